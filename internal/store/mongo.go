package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abhisek/quizlab/internal/quiz"
)

const defaultMongoDatabase = "quizlab"

// MongoStore keeps each quiz, result and report as a native document. The
// domain value lives under "body" (its JSON form converted to BSON); the
// fields queries filter or sort on are lifted to the top level.
type MongoStore struct {
	client   *mongo.Client
	quizzes  *mongo.Collection
	results  *mongo.Collection
	reports  *mongo.Collection
	events   *mongo.Collection
	counters *mongo.Collection
}

// OpenMongo connects to uri and ensures the indexes exist.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}
	if database == "" {
		database = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:   client,
		quizzes:  db.Collection("quizzes"),
		results:  db.Collection("quiz_results"),
		reports:  db.Collection("analysis_reports"),
		events:   db.Collection("llm_events"),
		counters: db.Collection("counters"),
	}

	if _, err := s.results.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "completedAt", Value: 1}},
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create result index: %w", err)
	}
	if _, err := s.reports.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create report index: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) QuizRepo() QuizRepo     { return &mongoQuizRepo{s} }
func (s *MongoStore) ResultRepo() ResultRepo { return &mongoResultRepo{s} }
func (s *MongoStore) ReportRepo() ReportRepo { return &mongoReportRepo{s} }
func (s *MongoStore) EventRepo() EventRepo   { return &mongoEventRepo{s} }

// nextSeq is the document store's equivalent of the SQL global sequence.
func (s *MongoStore) nextSeq(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "global"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return doc.Seq, nil
}

type storedDoc struct {
	Body bson.Raw `bson:"body"`
}

func toBSON(v any) (bson.D, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.UnmarshalExtJSON(b, false, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func fromBSON(raw bson.Raw, v any) error {
	b, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]*T, error) {
	defer cur.Close(ctx)
	var out []*T
	for cur.Next(ctx) {
		var d storedDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		v := new(T)
		if err := fromBSON(d.Body, v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

type mongoQuizRepo struct{ s *MongoStore }

func (r *mongoQuizRepo) SaveQuiz(ctx context.Context, q *quiz.Quiz) error {
	body, err := toBSON(q)
	if err != nil {
		return fmt.Errorf("encode quiz: %w", err)
	}
	doc := bson.D{
		{Key: "_id", Value: q.ID},
		{Key: "topic", Value: q.Topic},
		{Key: "createdAt", Value: q.CreatedAt},
		{Key: "body", Value: body},
	}
	_, err = r.s.quizzes.ReplaceOne(ctx, bson.M{"_id": q.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save quiz %s: %w", q.ID, err)
	}
	return nil
}

func (r *mongoQuizRepo) GetQuiz(ctx context.Context, id string) (*quiz.Quiz, error) {
	var d storedDoc
	err := r.s.quizzes.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, quiz.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz %s: %w", id, err)
	}
	var q quiz.Quiz
	if err := fromBSON(d.Body, &q); err != nil {
		return nil, fmt.Errorf("decode quiz %s: %w", id, err)
	}
	return &q, nil
}

type mongoResultRepo struct{ s *MongoStore }

func (r *mongoResultRepo) AppendResult(ctx context.Context, res *quiz.QuizResult) error {
	body, err := toBSON(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	doc := bson.D{
		{Key: "_id", Value: res.ID},
		{Key: "userId", Value: res.UserID},
		{Key: "quizId", Value: res.QuizID},
		{Key: "score", Value: res.Score},
		{Key: "completedAt", Value: res.CompletedAt},
		{Key: "body", Value: body},
	}
	if _, err := r.s.results.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("append result %s: %w", res.ID, err)
	}
	return nil
}

func (r *mongoResultRepo) ResultsByUser(ctx context.Context, userID string) ([]*quiz.QuizResult, error) {
	cur, err := r.s.results.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query results for %s: %w", userID, err)
	}
	return decodeAll[quiz.QuizResult](ctx, cur)
}

type mongoReportRepo struct{ s *MongoStore }

func (r *mongoReportRepo) AppendReport(ctx context.Context, rep *quiz.AnalysisReport) error {
	body, err := toBSON(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	seq, err := r.s.nextSeq(ctx)
	if err != nil {
		return err
	}
	doc := bson.D{
		{Key: "_id", Value: seq},
		{Key: "userId", Value: rep.UserID},
		{Key: "createdAt", Value: rep.CreatedAt},
		{Key: "body", Value: body},
	}
	if _, err := r.s.reports.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("append report for %s: %w", rep.UserID, err)
	}
	return nil
}

func (r *mongoReportRepo) LatestReport(ctx context.Context, userID string) (*quiz.AnalysisReport, error) {
	reports, err := r.ReportHistory(ctx, userID, 1)
	if err != nil || len(reports) == 0 {
		return nil, err
	}
	return reports[0], nil
}

func (r *mongoReportRepo) ReportHistory(ctx context.Context, userID string, limit int) ([]*quiz.AnalysisReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.s.reports.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query reports for %s: %w", userID, err)
	}
	return decodeAll[quiz.AnalysisReport](ctx, cur)
}

type mongoEventRepo struct{ s *MongoStore }

type llmEventDoc struct {
	ID           int64     `bson:"_id"`
	CreatedAt    time.Time `bson:"createdAt"`
	Provider     string    `bson:"provider"`
	Model        string    `bson:"model"`
	Purpose      string    `bson:"purpose"`
	InputTokens  int       `bson:"inputTokens"`
	OutputTokens int       `bson:"outputTokens"`
	LatencyMs    int64     `bson:"latencyMs"`
	Success      bool      `bson:"success"`
	ErrorMessage string    `bson:"errorMessage"`
	RequestBody  string    `bson:"requestBody"`
	ResponseBody string    `bson:"responseBody"`
}

func (d llmEventDoc) record() LLMEventRecord {
	return LLMEventRecord{
		ID:        d.ID,
		Timestamp: d.CreatedAt.UTC(),
		LLMRequestEventData: LLMRequestEventData{
			Provider:     d.Provider,
			Model:        d.Model,
			Purpose:      d.Purpose,
			InputTokens:  d.InputTokens,
			OutputTokens: d.OutputTokens,
			LatencyMs:    d.LatencyMs,
			Success:      d.Success,
			ErrorMessage: d.ErrorMessage,
			RequestBody:  d.RequestBody,
			ResponseBody: d.ResponseBody,
		},
	}
}

func (r *mongoEventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seq, err := r.s.nextSeq(ctx)
	if err != nil {
		return err
	}
	doc := llmEventDoc{
		ID:           seq,
		CreatedAt:    time.Now().UTC(),
		Provider:     data.Provider,
		Model:        data.Model,
		Purpose:      data.Purpose,
		InputTokens:  data.InputTokens,
		OutputTokens: data.OutputTokens,
		LatencyMs:    data.LatencyMs,
		Success:      data.Success,
		ErrorMessage: data.ErrorMessage,
		RequestBody:  data.RequestBody,
		ResponseBody: data.ResponseBody,
	}
	if _, err := r.s.events.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *mongoEventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	filter := bson.M{}
	if opts.Purpose != "" {
		filter["purpose"] = opts.Purpose
	}
	id := bson.M{}
	if opts.After > 0 {
		id["$gt"] = opts.After
	}
	if opts.Before > 0 {
		id["$lt"] = opts.Before
	}
	if len(id) > 0 {
		filter["_id"] = id
	}
	ts := bson.M{}
	if !opts.From.IsZero() {
		ts["$gte"] = opts.From
	}
	if !opts.To.IsZero() {
		ts["$lte"] = opts.To
	}
	if len(ts) > 0 {
		filter["createdAt"] = ts
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	cur, err := r.s.events.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	var docs []llmEventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode LLM events: %w", err)
	}
	out := make([]LLMEventRecord, len(docs))
	for i, d := range docs {
		out[i] = d.record()
	}
	return out, nil
}

func (r *mongoEventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEventRecord, error) {
	var d llmEventDoc
	err := r.s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	rec := d.record()
	return &rec, nil
}

type usageRow struct {
	Key          string `bson:"_id"`
	Calls        int    `bson:"calls"`
	InputTokens  int    `bson:"inputTokens"`
	OutputTokens int    `bson:"outputTokens"`
	LatencyMs    int64  `bson:"latencyMs"`
}

func (r *mongoEventRepo) usageBy(ctx context.Context, field string) ([]usageRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "calls", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "inputTokens", Value: bson.D{{Key: "$sum", Value: "$inputTokens"}}},
			{Key: "outputTokens", Value: bson.D{{Key: "$sum", Value: "$outputTokens"}}},
			{Key: "latencyMs", Value: bson.D{{Key: "$sum", Value: "$latencyMs"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cur, err := r.s.events.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage by %s: %w", field, err)
	}
	var rows []usageRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode usage: %w", err)
	}
	return rows, nil
}

func (r *mongoEventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	rows, err := r.usageBy(ctx, "purpose")
	if err != nil {
		return nil, err
	}
	out := make([]PurposeUsage, len(rows))
	for i, row := range rows {
		out[i] = PurposeUsage{
			Purpose:      row.Key,
			Calls:        row.Calls,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
		}
		if row.Calls > 0 {
			out[i].AvgLatencyMs = row.LatencyMs / int64(row.Calls)
		}
	}
	return out, nil
}

func (r *mongoEventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	rows, err := r.usageBy(ctx, "model")
	if err != nil {
		return nil, err
	}
	out := make([]ModelUsage, len(rows))
	for i, row := range rows {
		out[i] = ModelUsage{
			Model:        row.Key,
			Calls:        row.Calls,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
		}
	}
	return out, nil
}
