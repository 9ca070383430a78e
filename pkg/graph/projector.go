package graph

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/relationships"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Projector mirrors users and their edges into the graph. It satisfies the
// pipeline's event sink, so it can ride along an import run. Projection
// failures are logged and never fail the import.
type Projector struct {
	client *Client
	logger ectologger.Logger
}

func NewProjector(client *Client, logger ectologger.Logger) *Projector {
	return &Projector{
		client: client,
		logger: logger,
	}
}

// UserCreated merges the user node into the graph.
func (p *Projector) UserCreated(ctx context.Context, user *models.User, source models.Source) {
	p.projectUser(ctx, user)
}

// UserSeen re-merges the user node; a repeat sighting carries no new
// attributes but keeps the node present after a graph rebuild.
func (p *Projector) UserSeen(ctx context.Context, user *models.User, source models.Source) {
	p.projectUser(ctx, user)
}

func (p *Projector) projectUser(ctx context.Context, user *models.User) {
	ctx, span := tracing.StartSpan(ctx, "graph.Projector.projectUser")
	defer span.End()

	cypher := `
		MERGE (u:User {user_id: $user_id})
		SET u.email = $email,
			u.first_name = $first_name,
			u.last_name = $last_name
	`
	params := map[string]any{
		"user_id":    user.UserID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	}

	if err := p.write(ctx, cypher, params); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("user_id", user.UserID).Warn("Failed to project user node")
	}
}

// EdgeCreated merges the edge into the graph. Friendships are undirected in
// meaning, so the single stored direction is written once; queries match
// without direction.
func (p *Projector) EdgeCreated(ctx context.Context, edge relationships.Edge, source models.Source) {
	ctx, span := tracing.StartSpan(ctx, "graph.Projector.EdgeCreated")
	defer span.End()

	var cypher string
	params := map[string]any{
		"from_id": edge.FromID,
		"to_id":   edge.ToID,
	}

	switch edge.Kind {
	case relationships.EdgeFriendship:
		cypher = `
			MATCH (a:User {user_id: $from_id}), (b:User {user_id: $to_id})
			MERGE (a)-[r:FRIENDS_WITH]-(b)
			SET r.status = $status
		`
		params["status"] = edge.Status
	case relationships.EdgeLike:
		cypher = `
			MATCH (a:User {user_id: $from_id}), (b:User {user_id: $to_id})
			MERGE (a)-[r:LIKES {status: $status}]->(b)
		`
		params["status"] = edge.Status
	case relationships.EdgeHobby:
		cypher = `
			MATCH (u:User {user_id: $from_id})
			MERGE (h:Hobby {hobby_id: $to_id})
			SET h.name = $name
			MERGE (u)-[r:ENJOYS]->(h)
			SET r.priority = $priority
		`
		params["name"] = edge.Name
		params["priority"] = edge.Priority
	case relationships.EdgeMessage:
		cypher = `
			MATCH (a:User {user_id: $from_id}), (b:User {user_id: $to_id})
			MERGE (a)-[r:MESSAGED]->(b)
			SET r.count = coalesce(r.count, 0) + 1
		`
	default:
		return
	}

	if err := p.write(ctx, cypher, params); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"kind": edge.Kind,
			"from": edge.FromID,
			"to":   edge.ToID,
		}).Warn("Failed to project edge")
	}
}

// BatchCompleted is a no-op; the graph has no batch-level state.
func (p *Projector) BatchCompleted(ctx context.Context, source models.Source, summary *models.BatchSummary) {
}

func (p *Projector) write(ctx context.Context, cypher string, params map[string]any) error {
	_, err := p.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return nil, result.Err()
	})
	return err
}
