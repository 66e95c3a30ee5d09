package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Metrics live on the global registry, so tests assert deltas.

// ─── Recorder ───────────────────────────────────────────────────────────────

func TestRecorder_Points(t *testing.T) {
	r := Default()
	earned := testutil.ToFloat64(PointsEarned)
	redeemed := testutil.ToFloat64(PointsRedeemed)

	r.Earned(150)
	r.Earned(950)
	r.Redeemed(200)

	if got := testutil.ToFloat64(PointsEarned) - earned; got != 1100 {
		t.Errorf("earned delta = %v, want 1100", got)
	}
	if got := testutil.ToFloat64(PointsRedeemed) - redeemed; got != 200 {
		t.Errorf("redeemed delta = %v, want 200", got)
	}
}

func TestRecorder_Labels(t *testing.T) {
	r := Default()

	rejected := testutil.ToFloat64(RedemptionsRejected.WithLabelValues("insufficient_balance"))
	r.RedemptionRejected("insufficient_balance")
	if got := testutil.ToFloat64(RedemptionsRejected.WithLabelValues("insufficient_balance")) - rejected; got != 1 {
		t.Errorf("rejected delta = %v, want 1", got)
	}

	completed := testutil.ToFloat64(BookingEvents.WithLabelValues("completed"))
	r.Booking("completed")
	r.Booking("completed")
	if got := testutil.ToFloat64(BookingEvents.WithLabelValues("completed")) - completed; got != 2 {
		t.Errorf("completed delta = %v, want 2", got)
	}

	ok := testutil.ToFloat64(Logins.WithLabelValues("ok"))
	r.Login("ok")
	if got := testutil.ToFloat64(Logins.WithLabelValues("ok")) - ok; got != 1 {
		t.Errorf("login delta = %v, want 1", got)
	}
}

func TestRecorder_TierChangeSkipsSameTier(t *testing.T) {
	r := Default()
	before := testutil.ToFloat64(TierChanges.WithLabelValues("Silver", "Silver"))
	r.TierChanged("Silver", "Silver")
	if got := testutil.ToFloat64(TierChanges.WithLabelValues("Silver", "Silver")); got != before {
		t.Errorf("same-tier change was recorded: %v -> %v", before, got)
	}

	up := testutil.ToFloat64(TierChanges.WithLabelValues("Bronze", "Silver"))
	r.TierChanged("Bronze", "Silver")
	if got := testutil.ToFloat64(TierChanges.WithLabelValues("Bronze", "Silver")) - up; got != 1 {
		t.Errorf("Bronze->Silver delta = %v, want 1", got)
	}
}

func TestRecorder_NopAndNil(t *testing.T) {
	before := testutil.ToFloat64(Registrations)

	Nop().Registered()
	var nilRec *Recorder
	nilRec.Registered()
	nilRec.Earned(10)

	if got := testutil.ToFloat64(Registrations); got != before {
		t.Errorf("Nop/nil recorder changed registrations: %v -> %v", before, got)
	}
}

// ─── HTTP ───────────────────────────────────────────────────────────────────

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/points", "200"))
	ObserveRequest("GET", "/api/points", 200, 3*time.Millisecond)
	if got := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/points", "200")) - before; got != 1 {
		t.Errorf("request delta = %v, want 1", got)
	}

	unmatched := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "unmatched", "404"))
	ObserveRequest("GET", "", 404, time.Millisecond)
	if got := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "unmatched", "404")) - unmatched; got != 1 {
		t.Errorf("unmatched delta = %v, want 1", got)
	}
}
