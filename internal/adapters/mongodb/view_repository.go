package mongodb

import (
	"context"
	"ozondash/internal/domain"
	"ozondash/internal/ports"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ViewsCollection = "views"

type ViewRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewViewRepository(db *MongoDB) ports.ViewRepository {
	return newViewRepository(db.Database.Collection(ViewsCollection))
}

func newViewRepository(collection *mongo.Collection) *ViewRepository {
	return &ViewRepository{
		collection: collection,
		now:        time.Now,
	}
}

// Save inserts the view, or replaces it when the id already exists. A view
// without id gets a new one.
func (r *ViewRepository) Save(ctx context.Context, view domain.ViewState) (domain.ViewState, error) {
	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	view.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": view.ID}, view, opts)
	if err != nil {
		return domain.ViewState{}, errors.Wrap(err, "failed to save view")
	}

	return view, nil
}

func (r *ViewRepository) FindByID(ctx context.Context, id string) (domain.ViewState, error) {
	var view domain.ViewState
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&view)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ViewState{}, errors.Wrapf(domain.ErrViewNotFound, "view %s", id)
	}
	if err != nil {
		return domain.ViewState{}, errors.Wrap(err, "failed to find view")
	}

	return view, nil
}

func (r *ViewRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "failed to delete view")
	}
	if result.DeletedCount == 0 {
		return errors.Wrapf(domain.ErrViewNotFound, "view %s", id)
	}

	return nil
}
