// Package qdrant provides a VectorDB implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/infrastructure/config"
)

// Repository implements the VectorDB interface using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = config.DefaultCollection
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: collection,
		conn:       conn,
	}, nil
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection drops the collection. Used by integration tests to
// start from a clean slate.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Save stores a requirement document with its embedding. Upserting by the
// requirement ID replaces any previous document.
func (r *Repository) Save(ctx context.Context, doc entities.RequirementDoc) error {
	return r.SaveBatch(ctx, []entities.RequirementDoc{doc})
}

// SaveBatch stores multiple requirement documents.
func (r *Repository) SaveBatch(ctx context.Context, docs []entities.RequirementDoc) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(docs))
	for _, doc := range docs {
		point := &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{
					Uuid: doc.ID,
				},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: doc.Embedding,
					},
				},
			},
			Payload: map[string]*pb.Value{
				"solution_id": {Kind: &pb.Value_StringValue{StringValue: doc.SolutionID}},
				"req_type":    {Kind: &pb.Value_StringValue{StringValue: string(doc.ReqType)}},
				"req_id":      {Kind: &pb.Value_StringValue{StringValue: doc.ReqID}},
				"name":        {Kind: &pb.Value_StringValue{StringValue: doc.Name}},
				"statement":   {Kind: &pb.Value_StringValue{StringValue: doc.Statement}},
			},
		}
		points = append(points, point)
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// Search performs a semantic search within a solution.
func (r *Repository) Search(ctx context.Context, solutionID string, embedding []float32, limit int) ([]entities.SearchHit, error) {
	return r.search(ctx, embedding, limit, &pb.Filter{
		Must: []*pb.Condition{keywordCondition("solution_id", solutionID)},
	})
}

// SearchByType performs a semantic search within a solution filtered by
// requirement type.
func (r *Repository) SearchByType(ctx context.Context, solutionID string, embedding []float32, reqType entities.RequirementType, limit int) ([]entities.SearchHit, error) {
	return r.search(ctx, embedding, limit, &pb.Filter{
		Must: []*pb.Condition{
			keywordCondition("solution_id", solutionID),
			keywordCondition("req_type", string(reqType)),
		},
	})
}

func (r *Repository) search(ctx context.Context, embedding []float32, limit int, filter *pb.Filter) ([]entities.SearchHit, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter:         filter,
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	hits := make([]entities.SearchHit, 0, len(resp.Result))
	for _, point := range resp.Result {
		doc := payloadToDoc(point.Payload)
		doc.ID = pointIDString(point.Id)
		hits = append(hits, entities.SearchHit{Doc: doc, Score: point.Score})
	}
	return hits, nil
}

// Delete removes a requirement document by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}

	return nil
}

// DeleteBySolution removes all documents belonging to a solution.
func (r *Repository) DeleteBySolution(ctx context.Context, solutionID string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{keywordCondition("solution_id", solutionID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points by solution: %w", err)
	}

	return nil
}

func keywordCondition(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func payloadToDoc(payload map[string]*pb.Value) entities.RequirementDoc {
	return entities.RequirementDoc{
		SolutionID: payload["solution_id"].GetStringValue(),
		ReqType:    entities.RequirementType(payload["req_type"].GetStringValue()),
		ReqID:      payload["req_id"].GetStringValue(),
		Name:       payload["name"].GetStringValue(),
		Statement:  payload["statement"].GetStringValue(),
	}
}

func pointIDString(id *pb.PointId) string {
	if id == nil {
		return ""
	}
	return id.GetUuid()
}
