package postgres

import (
	"strings"
	"testing"

	qb "github.com/riskibarqy/fannax/internal/platform/querybuilder"
)

func TestMarshalPayload(t *testing.T) {
	empty, err := marshalPayload(nil)
	if err != nil || empty != "{}" {
		t.Fatalf("unexpected empty payload: %q %v", empty, err)
	}

	raw, err := marshalPayload(map[string]any{"days": 3})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	decoded, err := unmarshalPayload([]byte(raw))
	if err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if decoded["days"] != float64(3) {
		t.Fatalf("unexpected decoded payload: %#v", decoded)
	}

	if got, err := unmarshalPayload(nil); err != nil || got != nil {
		t.Fatalf("nil result must decode to nil: %#v %v", got, err)
	}
}

func TestUpsertJobDispatchQueryShape(t *testing.T) {
	model := jobDispatchInsertModel{DispatchID: "settle-1", JobName: "settle", JobPath: "/v1/jobs/settle", Payload: "{}", Status: "sent"}
	query, args, err := qb.InsertModel("job_dispatches", model, upsertJobDispatchSuffix)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if !strings.HasPrefix(query, "INSERT INTO job_dispatches (dispatch_id, job_name, job_path, trigger, payload, result, status,") {
		t.Fatalf("unexpected insert prefix: %s", query)
	}
	if !strings.Contains(query, "ON CONFLICT (dispatch_id)") {
		t.Fatalf("missing conflict clause: %s", query)
	}
	if len(args) != 18 {
		t.Fatalf("expected 18 args, got %d", len(args))
	}
}
