package order

import (
	"errors"
	"testing"

	"github.com/omnistore/fulfillment-service/internal/model"
	"github.com/omnistore/fulfillment-service/internal/order/dto"
)

var allStatuses = []model.OrderStatus{
	model.StatusIntake, model.StatusProcessing, model.StatusPacked,
	model.StatusAssigned, model.StatusOutForDelivery, model.StatusDelivered,
	model.StatusHandoverToCourier, model.StatusStoreSale,
	model.StatusReturnInitiated, model.StatusReturned,
	model.StatusCancelled, model.StatusRejected,
}

func TestIsValidTransitionAgreesWithGraphs(t *testing.T) {
	for ft, graph := range transitionGraphs {
		for current, nexts := range graph {
			allowed := map[model.OrderStatus]bool{}
			for _, n := range nexts {
				allowed[n] = true
			}
			for _, candidate := range allStatuses {
				got := IsValidTransition(current, candidate, ft)
				if got != allowed[candidate] {
					t.Errorf("%s: %s -> %s = %v, want %v", ft, current, candidate, got, allowed[candidate])
				}
			}
		}
	}
}

func TestAllowedNextStatusesCopiesEdges(t *testing.T) {
	next := AllowedNextStatuses(model.StatusAssigned, model.FulfillmentInsideChannel)
	want := []model.OrderStatus{model.StatusOutForDelivery, model.StatusPacked, model.StatusCancelled}
	if len(next) != len(want) {
		t.Fatalf("allowed next from assigned = %v, want %v", next, want)
	}
	for i := range want {
		if next[i] != want[i] {
			t.Fatalf("allowed next from assigned = %v, want %v", next, want)
		}
	}

	// Mutating the returned slice must not touch the graph.
	next[0] = model.StatusReturned
	again := AllowedNextStatuses(model.StatusAssigned, model.FulfillmentInsideChannel)
	if again[0] != model.StatusOutForDelivery {
		t.Fatalf("graph was mutated through the returned slice")
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[model.OrderStatus]bool{
		model.StatusCancelled: true,
		model.StatusRejected:  true,
		model.StatusReturned:  true,
	}
	for _, s := range allStatuses {
		if got := IsTerminalStatus(s); got != terminal[s] {
			t.Errorf("IsTerminalStatus(%s) = %v, want %v", s, got, terminal[s])
		}
	}
}

func TestInitialStatus(t *testing.T) {
	cases := []struct {
		source string
		ft     model.FulfillmentType
		want   model.OrderStatus
	}{
		{"store", model.FulfillmentStore, model.StatusStoreSale},
		{"store", model.FulfillmentInsideChannel, model.StatusStoreSale},
		{"web", model.FulfillmentStore, model.StatusStoreSale},
		{"web", model.FulfillmentInsideChannel, model.StatusIntake},
		{"direct", model.FulfillmentOutsideChannel, model.StatusIntake},
	}
	for _, c := range cases {
		if got := InitialStatus(c.source, c.ft); got != c.want {
			t.Errorf("InitialStatus(%q, %q) = %q, want %q", c.source, c.ft, got, c.want)
		}
	}
}

func testOrder(ft model.FulfillmentType, status model.OrderStatus) *model.Order {
	return &model.Order{
		BaseModel:       model.BaseModel{ID: "o1"},
		FulfillmentType: ft,
		Status:          status,
	}
}

func TestValidateTransitionRejectsUnknownEdge(t *testing.T) {
	o := testOrder(model.FulfillmentInsideChannel, model.StatusIntake)
	err := ValidateTransition(o, model.StatusDelivered, dto.TransitionUpdate{})
	var badTransition *InvalidTransitionError
	if !errors.As(err, &badTransition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if len(badTransition.Allowed) == 0 {
		t.Fatalf("error should name the legal alternatives")
	}
}

func TestValidateTransitionChannelLeakage(t *testing.T) {
	cases := []struct {
		ft     model.FulfillmentType
		status model.OrderStatus
		next   model.OrderStatus
	}{
		{model.FulfillmentInsideChannel, model.StatusPacked, model.StatusHandoverToCourier},
		{model.FulfillmentOutsideChannel, model.StatusPacked, model.StatusAssigned},
		{model.FulfillmentStore, model.StatusStoreSale, model.StatusOutForDelivery},
		{model.FulfillmentInsideChannel, model.StatusIntake, model.StatusStoreSale},
	}
	for _, c := range cases {
		err := ValidateTransition(testOrder(c.ft, c.status), c.next, dto.TransitionUpdate{})
		var badChannel *InvalidTransitionForChannelError
		if !errors.As(err, &badChannel) {
			t.Errorf("%s -> %s on %s: expected channel error, got %v", c.status, c.next, c.ft, err)
		}
	}
}

func TestAssignedRequiresRider(t *testing.T) {
	o := testOrder(model.FulfillmentInsideChannel, model.StatusPacked)

	// Other fields supplied must not satisfy the rider prerequisite.
	err := ValidateTransition(o, model.StatusAssigned, dto.TransitionUpdate{
		CourierName: "acme", TrackingNumber: "T1", Reason: "whatever",
	})
	var prereq *PrerequisiteError
	if !errors.As(err, &prereq) {
		t.Fatalf("expected PrerequisiteError, got %v", err)
	}
	if prereq.Field != "assigned_rider_id" {
		t.Fatalf("missing field = %q, want assigned_rider_id", prereq.Field)
	}

	if err := ValidateTransition(o, model.StatusAssigned, dto.TransitionUpdate{AssignedRiderID: "R1"}); err != nil {
		t.Fatalf("expected success with rider supplied, got %v", err)
	}

	// A rider already on the order also satisfies it.
	rider := "R1"
	o.AssignedRiderID = &rider
	if err := ValidateTransition(o, model.StatusAssigned, dto.TransitionUpdate{}); err != nil {
		t.Fatalf("expected success with rider on order, got %v", err)
	}
}

func TestHandoverRequiresCourierFields(t *testing.T) {
	o := testOrder(model.FulfillmentOutsideChannel, model.StatusPacked)

	err := ValidateTransition(o, model.StatusHandoverToCourier, dto.TransitionUpdate{})
	var prereq *PrerequisiteError
	if !errors.As(err, &prereq) || prereq.Field != "courier_name" {
		t.Fatalf("expected courier_name prerequisite, got %v", err)
	}

	err = ValidateTransition(o, model.StatusHandoverToCourier, dto.TransitionUpdate{CourierName: "acme"})
	if !errors.As(err, &prereq) || prereq.Field != "tracking_number" {
		t.Fatalf("expected tracking_number prerequisite, got %v", err)
	}

	err = ValidateTransition(o, model.StatusHandoverToCourier, dto.TransitionUpdate{
		CourierName: "acme", TrackingNumber: "T1",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestReasonRequiredForCancellationFamily(t *testing.T) {
	cases := []struct {
		ft     model.FulfillmentType
		status model.OrderStatus
		next   model.OrderStatus
	}{
		{model.FulfillmentInsideChannel, model.StatusIntake, model.StatusCancelled},
		{model.FulfillmentInsideChannel, model.StatusIntake, model.StatusRejected},
		{model.FulfillmentInsideChannel, model.StatusDelivered, model.StatusReturnInitiated},
	}
	for _, c := range cases {
		err := ValidateTransition(testOrder(c.ft, c.status), c.next, dto.TransitionUpdate{})
		var prereq *PrerequisiteError
		if !errors.As(err, &prereq) || prereq.Field != "reason" {
			t.Errorf("%s -> %s: expected reason prerequisite, got %v", c.status, c.next, err)
		}
		if err := ValidateTransition(testOrder(c.ft, c.status), c.next, dto.TransitionUpdate{Reason: "damaged"}); err != nil {
			t.Errorf("%s -> %s with reason: expected success, got %v", c.status, c.next, err)
		}
	}
}
