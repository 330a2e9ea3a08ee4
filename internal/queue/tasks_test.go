package queue

import (
	"encoding/json"
	"testing"
)

func TestNewOrderStatusEmailTask(t *testing.T) {
	task, err := NewOrderStatusEmailTask(OrderStatusEmailPayload{OrderID: 42, Status: "confirmed"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if task.Type() != TaskOrderStatusEmail {
		t.Fatalf("task type = %q, want %q", task.Type(), TaskOrderStatusEmail)
	}
	var payload OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.OrderID != 42 || payload.Status != "confirmed" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestDisabledClientIsNoOp(t *testing.T) {
	client, err := NewClient(nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("nil config must disable the client")
	}
	if err := client.EnqueueOrderStatusEmail(OrderStatusEmailPayload{OrderID: 1, Status: "shipped"}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.EnqueueOrderExpireCancel(OrderExpireCancelPayload{OrderID: 1}, 0); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client: %v", err)
	}
}
