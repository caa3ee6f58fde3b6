package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// listLimit caps how many reports the durable backends return per listing.
const listLimit = 100

// storedTimeLayout is the canonical textual timestamp format for the
// document store. Fractional seconds are zero-padded to nine digits so
// the strings sort lexicographically in chronological order.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// mongoDoc mirrors SavedReport with timestamps stored as text.
type mongoDoc struct {
	ID         string        `bson:"id"`
	ReportData reportDataDoc `bson:"report_data"`
	SavedAt    string        `bson:"saved_at"`
}

type mongoDocData struct {
	ID              string            `bson:"id"`
	ReportType      string            `bson:"report_type"`
	Title           string            `bson:"title"`
	Summary         string            `bson:"summary"`
	HindiSummary    *string           `bson:"hindi_summary,omitempty"`
	Parameters      []HealthParameter `bson:"parameters"`
	HealthTips      []string          `bson:"health_tips"`
	HindiHealthTips []string          `bson:"hindi_health_tips,omitempty"`
	OverallStatus   string            `bson:"overall_status"`
	CreatedAt       string            `bson:"created_at"`
	ImageBase64     *string           `bson:"image_base64,omitempty"`
}

// reportDataDoc swallows shape mismatches when decoding report_data,
// so a record whose nested document was scrambled by another writer
// reads back with zero values instead of failing the whole query.
type reportDataDoc struct {
	mongoDocData `bson:",inline"`
}

func (d *reportDataDoc) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var inner mongoDocData
	if err := bson.UnmarshalValue(t, data, &inner); err != nil {
		return nil
	}
	d.mongoDocData = inner
	return nil
}

// reportRepoMongo persists saved reports in a MongoDB collection.
type reportRepoMongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewReportRepoMongo(client *mongo.Client, dbName string) ReportRepository {
	return &reportRepoMongo{
		client:     client,
		collection: client.Database(dbName).Collection("saved_reports"),
	}
}

func (m *reportRepoMongo) Create(ctx context.Context, r *SavedReport) error {
	if _, err := m.collection.InsertOne(ctx, toMongoDoc(r)); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (m *reportRepoMongo) List(ctx context.Context) ([]*SavedReport, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "saved_at", Value: -1}}).
		SetLimit(listLimit)
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reports: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	out := make([]*SavedReport, 0, len(docs))
	for i := range docs {
		out = append(out, fromMongoDoc(&docs[i]))
	}
	return out, nil
}

func (m *reportRepoMongo) Get(ctx context.Context, id string) (*SavedReport, error) {
	var doc mongoDoc
	err := m.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find report: %w", err)
	}
	return fromMongoDoc(&doc), nil
}

func (m *reportRepoMongo) Delete(ctx context.Context, id string) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *reportRepoMongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *reportRepoMongo) Name() string { return "mongodb" }

func toMongoDoc(r *SavedReport) *mongoDoc {
	return &mongoDoc{
		ID: r.ID,
		ReportData: reportDataDoc{mongoDocData: mongoDocData{
			ID:              r.ReportData.ID,
			ReportType:      r.ReportData.ReportType,
			Title:           r.ReportData.Title,
			Summary:         r.ReportData.Summary,
			HindiSummary:    r.ReportData.HindiSummary,
			Parameters:      r.ReportData.Parameters,
			HealthTips:      r.ReportData.HealthTips,
			HindiHealthTips: r.ReportData.HindiHealthTips,
			OverallStatus:   r.ReportData.OverallStatus,
			CreatedAt:       r.ReportData.CreatedAt.UTC().Format(storedTimeLayout),
			ImageBase64:     r.ReportData.ImageBase64,
		}},
		SavedAt: r.SavedAt.UTC().Format(storedTimeLayout),
	}
}

// fromMongoDoc restores a stored document. Records with missing or
// unparseable pieces come back with zero values rather than being
// skipped, so one bad record never hides the rest of the collection.
func fromMongoDoc(d *mongoDoc) *SavedReport {
	return &SavedReport{
		ID: d.ID,
		ReportData: AnalyzedReport{
			ID:              d.ReportData.ID,
			ReportType:      d.ReportData.ReportType,
			Title:           d.ReportData.Title,
			Summary:         d.ReportData.Summary,
			HindiSummary:    d.ReportData.HindiSummary,
			Parameters:      d.ReportData.Parameters,
			HealthTips:      d.ReportData.HealthTips,
			HindiHealthTips: d.ReportData.HindiHealthTips,
			OverallStatus:   d.ReportData.OverallStatus,
			CreatedAt:       parseStoredTime(d.ReportData.CreatedAt),
			ImageBase64:     d.ReportData.ImageBase64,
		},
		SavedAt: parseStoredTime(d.SavedAt),
	}
}

// parseStoredTime reads the canonical format and, for records written
// before timestamps carried a zone, zone-less ISO strings taken as UTC.
func parseStoredTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", s); err == nil {
		return t
	}
	return time.Time{}
}
