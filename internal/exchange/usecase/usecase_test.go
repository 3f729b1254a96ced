package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/omnistore/fulfillment-service/internal/exchange"
	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/pkg/logger"
)

type fakeOrderRepo struct {
	orders      map[string]*model.Order
	items       map[string][]model.OrderItem
	notes       []model.OrderNote
	failNoteFor map[string]bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:      map[string]*model.Order{},
		items:       map[string][]model.OrderItem{},
		failNoteFor: map[string]bool{},
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetItems(_ context.Context, orderID string) ([]model.OrderItem, error) {
	return r.items[orderID], nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, o *model.Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) ListChildren(_ context.Context, parentID string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.ParentOrderID != nil && *o.ParentOrderID == parentID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) AddNote(_ context.Context, note *model.OrderNote) error {
	if r.failNoteFor[note.OrderID] {
		return errors.New("notes table unavailable")
	}
	r.notes = append(r.notes, *note)
	return nil
}

func (r *fakeOrderRepo) addOrder(id, parentID string, items ...model.OrderItem) {
	o := &model.Order{BaseModel: model.BaseModel{ID: id}}
	if parentID != "" {
		o.ParentOrderID = &parentID
	}
	r.orders[id] = o
	r.items[id] = items
}

func item(variantID string, qty int, price float64) model.OrderItem {
	return model.OrderItem{VariantID: variantID, Quantity: qty, UnitPrice: price}
}

func TestGetRelatedOrdersClassifiesExchange(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addOrder("parent", "",
		item("v1", 6, 10),
		item("v2", 4, 20),
	)
	repo.addOrder("child", "parent",
		item("v1", -3, 10),
		item("v3", 2, 15),
	)
	uc := NewExchangeLinker(repo, logger.NewNop())

	rel, err := uc.GetRelatedOrders(context.Background(), "parent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rel.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(rel.Children))
	}
	child := rel.Children[0]
	if child.ExchangeType != exchange.TypeExchange {
		t.Errorf("type = %q, want exchange", child.ExchangeType)
	}
	if child.ReturnedItems != 3 || child.NewItems != 2 {
		t.Errorf("counts = %d returned / %d new", child.ReturnedItems, child.NewItems)
	}
	if child.ReturnAmount != 30 || child.NewAmount != 30 {
		t.Errorf("amounts = %.2f returned / %.2f new", child.ReturnAmount, child.NewAmount)
	}
	// 3 of 10 parent units came back.
	if rel.IsFullReturn || !rel.IsPartialReturn {
		t.Errorf("full=%v partial=%v, want partial only", rel.IsFullReturn, rel.IsPartialReturn)
	}
	if !rel.HasNewItems {
		t.Errorf("HasNewItems should be true")
	}
}

func TestGetRelatedOrdersClassifiesRefund(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addOrder("parent", "", item("v1", 5, 10))
	repo.addOrder("child", "parent", item("v1", -5, 10))
	uc := NewExchangeLinker(repo, logger.NewNop())

	rel, err := uc.GetRelatedOrders(context.Background(), "parent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel.Children[0].ExchangeType != exchange.TypeRefund {
		t.Errorf("type = %q, want refund", rel.Children[0].ExchangeType)
	}
	if !rel.IsFullReturn || rel.IsPartialReturn {
		t.Errorf("full=%v partial=%v, want full only", rel.IsFullReturn, rel.IsPartialReturn)
	}
	if rel.HasNewItems {
		t.Errorf("refund has no new items")
	}
	if rel.ReturnAmount != 50 {
		t.Errorf("return amount = %.2f", rel.ReturnAmount)
	}
}

func TestGetRelatedOrdersAggregatesAcrossChildren(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addOrder("parent", "", item("v1", 10, 10))
	repo.addOrder("child-1", "parent", item("v1", -4, 10))
	repo.addOrder("child-2", "parent", item("v1", -6, 10), item("v2", 1, 30))
	uc := NewExchangeLinker(repo, logger.NewNop())

	rel, err := uc.GetRelatedOrders(context.Background(), "parent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rel.Children) != 2 {
		t.Fatalf("children = %d", len(rel.Children))
	}
	if rel.ReturnedItemsCount != 10 || rel.NewItemsCount != 1 {
		t.Errorf("aggregate counts = %d returned / %d new", rel.ReturnedItemsCount, rel.NewItemsCount)
	}
	if !rel.IsFullReturn {
		t.Errorf("all 10 parent units returned across children, want full return")
	}
}

func TestGetRelatedOrdersResolvesParentSide(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addOrder("parent", "", item("v1", 2, 10))
	repo.addOrder("child", "parent", item("v1", -1, 10))
	uc := NewExchangeLinker(repo, logger.NewNop())

	rel, err := uc.GetRelatedOrders(context.Background(), "child")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel.Parent == nil || rel.Parent.ID != "parent" {
		t.Fatalf("parent not resolved: %+v", rel.Parent)
	}
	// The child has no children of its own.
	if len(rel.Children) != 0 {
		t.Errorf("children = %d, want 0", len(rel.Children))
	}
}

func TestGetRelatedOrdersUnknownOrder(t *testing.T) {
	uc := NewExchangeLinker(newFakeOrderRepo(), logger.NewNop())
	_, err := uc.GetRelatedOrders(context.Background(), "ghost")
	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLogExchangeLinkNotesBothSides(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := NewExchangeLinker(repo, logger.NewNop())

	res := uc.LogExchangeLink(context.Background(), "parent", "child", exchange.TypeExchange)
	if !res.ParentNoted || !res.ChildNoted {
		t.Fatalf("result = %+v, want both sides noted", res)
	}
	if len(repo.notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(repo.notes))
	}
	if repo.notes[0].OrderID != "parent" || repo.notes[1].OrderID != "child" {
		t.Errorf("note targets = %s, %s", repo.notes[0].OrderID, repo.notes[1].OrderID)
	}
}

func TestLogExchangeLinkSidesAreIndependent(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.failNoteFor["parent"] = true
	uc := NewExchangeLinker(repo, logger.NewNop())

	res := uc.LogExchangeLink(context.Background(), "parent", "child", exchange.TypeRefund)
	if res.ParentNoted {
		t.Errorf("parent note should have failed")
	}
	if res.ParentErr == "" {
		t.Errorf("parent error not recorded")
	}
	if !res.ChildNoted {
		t.Errorf("child note must still be written")
	}
	if len(repo.notes) != 1 || repo.notes[0].OrderID != "child" {
		t.Fatalf("notes = %+v", repo.notes)
	}
}
