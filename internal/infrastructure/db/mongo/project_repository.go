package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

const projectsCollection = "projects"

type ProjectRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{db: db, col: db.Collection(projectsCollection)}
}

// projectDoc stores the budget as Decimal128 so amounts keep their scale.
type projectDoc struct {
	ID             int64                 `bson:"_id"`
	Name           string                `bson:"name"`
	Description    string                `bson:"description,omitempty"`
	ClientID       int64                 `bson:"client_id"`
	AssignedUserID int64                 `bson:"assigned_user_id"`
	StartDate      time.Time             `bson:"start_date,omitempty"`
	Deadline       time.Time             `bson:"deadline"`
	Budget         *primitive.Decimal128 `bson:"budget,omitempty"`
	Status         string                `bson:"status"`
}

func toProjectDoc(p *domain.Project) (projectDoc, error) {
	doc := projectDoc{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		ClientID:       p.ClientID,
		AssignedUserID: p.AssignedUserID,
		StartDate:      p.StartDate.UTC(),
		Deadline:       p.Deadline.UTC(),
		Status:         string(p.Status),
	}
	if p.Budget != "" {
		d, err := primitive.ParseDecimal128(p.Budget)
		if err != nil {
			return projectDoc{}, fmt.Errorf("%w: budget %q: %v", domain.ErrValidation, p.Budget, err)
		}
		doc.Budget = &d
	}
	return doc, nil
}

func (d projectDoc) toDomain() *domain.Project {
	p := &domain.Project{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		ClientID:       d.ClientID,
		AssignedUserID: d.AssignedUserID,
		StartDate:      d.StartDate.UTC(),
		Deadline:       d.Deadline.UTC(),
		Status:         domain.ProjectStatus(d.Status),
	}
	if d.Budget != nil {
		p.Budget = d.Budget.String()
	}
	return p
}

// Create assigns the next project id and inserts the document.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	doc, err := toProjectDoc(p)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, projectsCollection)
	if err != nil {
		return err
	}
	doc.ID = id

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	p.ID = id
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) (bool, error) {
	doc, err := toProjectDoc(p)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc)
	if err != nil {
		return false, fmt.Errorf("update project: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *ProjectRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc projectDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns projects matching filter, soonest deadline first.
func (r *ProjectRepository) List(ctx context.Context, filter ports.ListProjectsFilter) ([]*domain.Project, error) {
	return r.find(ctx, projectFilter(filter))
}

func (r *ProjectRepository) FindAllInProgress(ctx context.Context) ([]*domain.Project, error) {
	return r.find(ctx, bson.M{"status": string(domain.StatusInProgress)})
}

func (r *ProjectRepository) find(ctx context.Context, filter bson.M) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "deadline", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	defer cur.Close(ctx)

	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	projects := make([]*domain.Project, 0, len(docs))
	for _, d := range docs {
		projects = append(projects, d.toDomain())
	}
	return projects, nil
}

// projectFilter builds the query document. The name matches as a
// case-insensitive substring.
func projectFilter(f ports.ListProjectsFilter) bson.M {
	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return filter
}
