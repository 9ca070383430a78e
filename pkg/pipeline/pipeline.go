// Package pipeline drives a full import run: it reads each feed, maps every
// raw record through the normalize and resolver layers and applies each
// feed's records inside one batch transaction.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/feeds"
	"github.com/Ramsey-B/fern/pkg/gateway"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalize"
	"github.com/Ramsey-B/fern/pkg/relationships"
	"github.com/Ramsey-B/fern/pkg/resolver"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// EventSink receives identity events as records are applied. Events are
// emitted inside the batch, so consumers see at-least-once delivery when a
// batch is retried after a rollback.
type EventSink interface {
	UserCreated(ctx context.Context, user *models.User, source models.Source)
	UserSeen(ctx context.Context, user *models.User, source models.Source)
	EdgeCreated(ctx context.Context, edge relationships.Edge, source models.Source)
	BatchCompleted(ctx context.Context, source models.Source, summary *models.BatchSummary)
}

// MultiSink fans events out to several sinks.
type MultiSink []EventSink

func (m MultiSink) UserCreated(ctx context.Context, user *models.User, source models.Source) {
	for _, s := range m {
		s.UserCreated(ctx, user, source)
	}
}

func (m MultiSink) UserSeen(ctx context.Context, user *models.User, source models.Source) {
	for _, s := range m {
		s.UserSeen(ctx, user, source)
	}
}

func (m MultiSink) EdgeCreated(ctx context.Context, edge relationships.Edge, source models.Source) {
	for _, s := range m {
		s.EdgeCreated(ctx, edge, source)
	}
}

func (m MultiSink) BatchCompleted(ctx context.Context, source models.Source, summary *models.BatchSummary) {
	for _, s := range m {
		s.BatchCompleted(ctx, source, summary)
	}
}

type Pipeline struct {
	gateway      gateway.Gateway
	resolver     *resolver.Resolver
	builder      *relationships.Builder
	logger       ectologger.Logger
	events       EventSink
	batchTimeout time.Duration
}

func NewPipeline(gw gateway.Gateway, logger ectologger.Logger) *Pipeline {
	res := resolver.NewResolver(gw, logger)
	return &Pipeline{
		gateway:  gw,
		resolver: res,
		builder:  relationships.NewBuilder(gw, res, logger),
		logger:   logger,
	}
}

// WithEventSink attaches an event sink. Without one no events are emitted.
func (p *Pipeline) WithEventSink(sink EventSink) *Pipeline {
	p.events = sink
	return p
}

// WithBatchTimeout bounds how long one feed's batch may run.
func (p *Pipeline) WithBatchTimeout(d time.Duration) *Pipeline {
	p.batchTimeout = d
	return p
}

// Run imports every feed in the given order. Feed order matters: the first
// source to mention an email owns the user's attributes, so callers pass
// feeds in the fixed excel, mongo, xml order. A failing feed aborts the run;
// batches already committed stay committed.
func (p *Pipeline) Run(ctx context.Context, sources []feeds.Feed) (*models.BatchSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Run")
	defer span.End()

	total := &models.BatchSummary{}
	for _, feed := range sources {
		records, err := feed.Read(ctx)
		if err != nil {
			return total, err
		}

		summary, err := p.ImportBatch(ctx, feed.Source(), records)
		if summary != nil {
			total.Merge(*summary)
		}
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ImportBatch applies one feed's records inside a single transaction. Any
// storage error rolls the whole batch back; the returned summary then
// describes work that was attempted but not applied.
func (p *Pipeline) ImportBatch(ctx context.Context, source models.Source, records []models.RawPersonRecord) (*models.BatchSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.ImportBatch")
	defer span.End()

	if p.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.batchTimeout)
		defer cancel()
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"source":  source,
		"records": len(records),
	})
	log.Info("Starting import batch")
	start := time.Now()

	summary := &models.BatchSummary{}
	err := p.gateway.WithinBatch(ctx, func(ctx context.Context) error {
		for i, record := range records {
			if err := p.importRecord(ctx, source, i, record, summary); err != nil {
				log.WithError(err).WithFields(map[string]any{"index": i, "email": record.Email}).Error("Record failed, rolling back batch")
				return err
			}
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	log.WithFields(map[string]any{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"duration":  time.Since(start).String(),
	}).Info("Import batch committed")

	if p.events != nil {
		p.events.BatchCompleted(ctx, source, summary)
	}
	return summary, nil
}

func (p *Pipeline) importRecord(ctx context.Context, source models.Source, index int, record models.RawPersonRecord, summary *models.BatchSummary) error {
	email := strings.TrimSpace(record.Email)
	if email == "" {
		summary.Skipped++
		summary.Failures = append(summary.Failures, models.RecordFailure{
			Source: source,
			Index:  index,
			Reason: "missing email",
		})
		return nil
	}
	record.Email = email

	req, parseFailures, err := p.buildUserRequest(ctx, source, record, summary)
	if err != nil {
		return err
	}
	summary.ParseFailures += parseFailures

	user, created, err := p.resolver.ResolveUser(ctx, req)
	if err != nil {
		return err
	}
	summary.Users.Record(created)
	summary.Processed++
	p.emitUser(ctx, user, source, created)

	for _, token := range record.Hobbies {
		out, err := p.builder.AttachHobby(ctx, user.UserID, token)
		if err != nil {
			return err
		}
		p.tally(ctx, source, summary, out)
		if out.Applied {
			summary.HobbyLinks++
		}
		if out.HobbyCreated {
			summary.Hobbies.Created++
		} else if out.Applied {
			summary.Hobbies.Reused++
		}
	}

	for _, friendEmail := range record.Friends {
		out, err := p.builder.AddFriendship(ctx, user.UserID, friendEmail)
		if err != nil {
			return err
		}
		p.tally(ctx, source, summary, out)
		if out.Applied {
			summary.Friendships++
		}
	}

	for _, rawLike := range record.Likes {
		out, err := p.builder.RecordLike(ctx, user.UserID, rawLike)
		if err != nil {
			return err
		}
		p.tally(ctx, source, summary, out)
		if out.Applied {
			summary.Likes++
		}
	}

	for _, rawMessage := range record.Messages {
		out, err := p.builder.RecordMessage(ctx, user.UserID, rawMessage)
		if err != nil {
			return err
		}
		p.tally(ctx, source, summary, out)
		if out.Applied {
			summary.Messages++
		}
	}

	return nil
}

// buildUserRequest maps a raw record to the attribute set stored on first
// sighting. Unparseable optional fields are dropped, counted and the record
// continues.
func (p *Pipeline) buildUserRequest(ctx context.Context, source models.Source, record models.RawPersonRecord, summary *models.BatchSummary) (models.CreateUserRequest, int, error) {
	req := models.CreateUserRequest{Email: record.Email}
	parseFailures := 0

	switch source {
	case models.SourceExcel:
		req.FirstName, req.LastName = normalize.SplitNameSimple(record.Name)

		key := normalize.SplitAddress(record.Address)
		addressID, created, err := p.resolver.ResolveAddress(ctx, key)
		if err != nil {
			return req, parseFailures, err
		}
		req.AddressID = addressID
		if addressID != nil {
			summary.Addresses.Record(created)
		}

		req.Phone = optional(normalize.ScrubPhone(record.Phone))
		req.Gender = optional(record.Gender)
		req.InterestedIn = optional(record.InterestedIn)

		birthDate, err := normalize.ParseBirthDate(record.BirthDate)
		if err != nil {
			p.logger.WithContext(ctx).WithError(err).WithField("email", record.Email).Warn("Dropping unparseable birth date")
			parseFailures++
		}
		req.BirthDate = birthDate

	default:
		req.FirstName, req.LastName = normalize.SplitName(record.Name, record.Email)
		req.Phone = optional(normalize.ScrubPhone(record.Phone))
	}

	return req, parseFailures, nil
}

func (p *Pipeline) tally(ctx context.Context, source models.Source, summary *models.BatchSummary, out relationships.Outcome) {
	summary.ParseFailures += out.ParseFailures
	summary.Users.Created += out.Shells.Created
	summary.Users.Reused += out.Shells.Reused
	if p.events != nil && out.Edge != nil {
		p.events.EdgeCreated(ctx, *out.Edge, source)
	}
}

func (p *Pipeline) emitUser(ctx context.Context, user *models.User, source models.Source, created bool) {
	if p.events == nil {
		return
	}
	if created {
		p.events.UserCreated(ctx, user, source)
	} else {
		p.events.UserSeen(ctx, user, source)
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
