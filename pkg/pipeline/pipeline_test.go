package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/feeds"
	"github.com/Ramsey-B/fern/pkg/gateway"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/relationships"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newTestPipeline() (*Pipeline, *gateway.MemoryGateway) {
	gw := gateway.NewMemoryGateway()
	return NewPipeline(gw, testLogger()), gw
}

type fakeFeed struct {
	source  models.Source
	records []models.RawPersonRecord
	err     error
}

func (f *fakeFeed) Source() models.Source {
	return f.source
}

func (f *fakeFeed) Read(ctx context.Context) ([]models.RawPersonRecord, error) {
	return f.records, f.err
}

func TestImportBatchExcelRecord(t *testing.T) {
	ctx := context.Background()
	p, gw := newTestPipeline()

	summary, err := p.ImportBatch(ctx, models.SourceExcel, []models.RawPersonRecord{
		{
			Source:       models.SourceExcel,
			Name:         "Forster, Martin",
			Address:      "Minslebener Str. 0, 46286, Dorsten",
			Phone:        "+49 (0) 201 / 123456",
			Hobbies:      []string{"Kochen %80%", "Joggen %20%"},
			Email:        "martin.forster@x.test",
			Gender:       "m",
			InterestedIn: "w",
			BirthDate:    "07.03.1959",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 1, summary.Users.Created)
	assert.Equal(t, 1, summary.Addresses.Created)
	assert.Equal(t, 2, summary.Hobbies.Created)
	assert.Equal(t, 2, summary.HobbyLinks)
	assert.Equal(t, 0, summary.ParseFailures)

	u := gw.Users()["martin.forster@x.test"]
	assert.Equal(t, "Martin", u.FirstName)
	assert.Equal(t, "Forster", u.LastName)
	require.NotNil(t, u.Phone)
	assert.Equal(t, "+490201123456", *u.Phone)
	require.NotNil(t, u.BirthDate)
	assert.NotNil(t, u.AddressID)
}

func TestImportBatchSkipsRecordsWithoutEmail(t *testing.T) {
	p, _ := newTestPipeline()

	summary, err := p.ImportBatch(context.Background(), models.SourceExcel, []models.RawPersonRecord{
		{Name: "Forster, Martin"},
		{Name: "Wickern, Ellen", Email: "ellen.wickern@x.test"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, 0, summary.Failures[0].Index)
	assert.Equal(t, "missing email", summary.Failures[0].Reason)
}

func TestImportBatchKeepsRecordOnParseFailure(t *testing.T) {
	p, gw := newTestPipeline()

	summary, err := p.ImportBatch(context.Background(), models.SourceExcel, []models.RawPersonRecord{
		{
			Name:      "Forster, Martin",
			Email:     "martin.forster@x.test",
			BirthDate: "1959-03-07",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.ParseFailures)

	u := gw.Users()["martin.forster@x.test"]
	assert.Nil(t, u.BirthDate)
	assert.Equal(t, "Martin", u.FirstName)
}

func TestRunFirstSourceOwnsAttributes(t *testing.T) {
	p, gw := newTestPipeline()

	excel := &fakeFeed{source: models.SourceExcel, records: []models.RawPersonRecord{
		{Name: "Forster, Martin", Phone: "111", Email: "martin.forster@x.test"},
	}}
	mongo := &fakeFeed{source: models.SourceMongo, records: []models.RawPersonRecord{
		{Name: "forster, martin", Phone: "222", Email: "martin.forster@x.test"},
	}}
	xmlFeed := &fakeFeed{source: models.SourceXML, records: []models.RawPersonRecord{
		{Name: "FORSTER, MARTIN", Email: "martin.forster@x.test", Hobbies: []string{"Schreiben"}},
	}}

	summary, err := p.Run(context.Background(), []feeds.Feed{excel, mongo, xmlFeed})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 1, summary.Users.Created)
	assert.Equal(t, 2, summary.Users.Reused)

	users := gw.Users()
	require.Len(t, users, 1)
	u := users["martin.forster@x.test"]
	require.NotNil(t, u.Phone)
	assert.Equal(t, "111", *u.Phone)

	stats, err := gw.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.HobbyLinks)
}

func TestRunShellUserThenFullRecord(t *testing.T) {
	p, gw := newTestPipeline()

	// The document feed mentions ellen only as a friend target; the xml feed
	// later carries her full record. The shell row keeps its identity.
	mongo := &fakeFeed{source: models.SourceMongo, records: []models.RawPersonRecord{
		{Email: "martin.forster@x.test", Friends: []string{"ellen.wickern@x.test"}},
	}}
	xmlFeed := &fakeFeed{source: models.SourceXML, records: []models.RawPersonRecord{
		{Email: "ellen.wickern@x.test", Name: "Wickern, Ellen", Hobbies: []string{"Lesen"}},
	}}

	summary, err := p.Run(context.Background(), []feeds.Feed{mongo, xmlFeed})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Users.Created)
	assert.Equal(t, 1, summary.Users.Reused)
	assert.Equal(t, 1, summary.Friendships)

	users := gw.Users()
	require.Len(t, users, 2)
	ellen := users["ellen.wickern@x.test"]
	assert.Equal(t, "Ellen", ellen.FirstName)
	assert.Equal(t, "Wickern", ellen.LastName)
}

func TestRunIsIdempotent(t *testing.T) {
	p, gw := newTestPipeline()

	run := func() []feeds.Feed {
		return []feeds.Feed{
			&fakeFeed{source: models.SourceExcel, records: []models.RawPersonRecord{
				{
					Name:    "Forster, Martin",
					Address: "Minslebener Str. 0, 46286, Dorsten",
					Email:   "martin.forster@x.test",
					Hobbies: []string{"Kochen %80%"},
				},
			}},
			&fakeFeed{source: models.SourceMongo, records: []models.RawPersonRecord{
				{
					Email:   "martin.forster@x.test",
					Friends: []string{"ellen.wickern@x.test"},
					Likes: []models.RawLike{
						{LikedEmail: "ellen.wickern@x.test", Status: "like", Timestamp: "2024-03-17 07:39:29"},
					},
				},
			}},
		}
	}

	_, err := p.Run(context.Background(), run())
	require.NoError(t, err)
	statsFirst, err := gw.Stats(context.Background())
	require.NoError(t, err)

	summary, err := p.Run(context.Background(), run())
	require.NoError(t, err)
	statsSecond, err := gw.Stats(context.Background())
	require.NoError(t, err)

	// A full replay resolves everything to existing rows.
	assert.Equal(t, *statsFirst, *statsSecond)
	assert.Equal(t, 0, summary.Users.Created)
	assert.Equal(t, 0, summary.Friendships)
	assert.Equal(t, 0, summary.Likes)
	assert.Equal(t, 0, summary.HobbyLinks)
}

type failingGateway struct {
	*gateway.MemoryGateway
}

func (g *failingGateway) CreateMessage(ctx context.Context, req models.CreateMessageRequest) (*models.Message, error) {
	return nil, fmt.Errorf("storage unavailable")
}

func TestImportBatchRollsBackOnStorageFailure(t *testing.T) {
	gw := &failingGateway{MemoryGateway: gateway.NewMemoryGateway()}
	p := NewPipeline(gw, testLogger())

	summary, err := p.ImportBatch(context.Background(), models.SourceMongo, []models.RawPersonRecord{
		{
			Email: "martin.forster@x.test",
			Messages: []models.RawMessage{
				{ReceiverEmail: "ellen.wickern@x.test", Message: "Hallo"},
			},
		},
	})
	require.Error(t, err)

	// The summary reports attempted work, but nothing was applied.
	assert.Equal(t, 1, summary.Processed)
	stats, statsErr := gw.Stats(context.Background())
	require.NoError(t, statsErr)
	assert.Equal(t, 0, stats.Users)
	assert.Equal(t, 0, stats.Messages)
}

type captureSink struct {
	created   []string
	seen      []string
	edges     []string
	completed []models.Source
}

func (s *captureSink) EdgeCreated(ctx context.Context, edge relationships.Edge, source models.Source) {
	s.edges = append(s.edges, edge.Kind)
}

func (s *captureSink) UserCreated(ctx context.Context, user *models.User, source models.Source) {
	s.created = append(s.created, user.Email)
}

func (s *captureSink) UserSeen(ctx context.Context, user *models.User, source models.Source) {
	s.seen = append(s.seen, user.Email)
}

func (s *captureSink) BatchCompleted(ctx context.Context, source models.Source, summary *models.BatchSummary) {
	s.completed = append(s.completed, source)
}

func TestPipelineEmitsEvents(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	sink := &captureSink{}
	p := NewPipeline(gw, testLogger()).WithEventSink(sink)

	_, err := p.ImportBatch(context.Background(), models.SourceExcel, []models.RawPersonRecord{
		{Name: "Forster, Martin", Email: "martin.forster@x.test"},
	})
	require.NoError(t, err)

	_, err = p.ImportBatch(context.Background(), models.SourceMongo, []models.RawPersonRecord{
		{Email: "martin.forster@x.test", Friends: []string{"ellen.wickern@x.test"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"martin.forster@x.test"}, sink.created)
	assert.Equal(t, []string{"martin.forster@x.test"}, sink.seen)
	assert.Equal(t, []string{"friendship"}, sink.edges)
	assert.Equal(t, []models.Source{models.SourceExcel, models.SourceMongo}, sink.completed)
}
