package order

import (
	"errors"
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in   string
		want Priority
		err  error
	}{
		{"VIP", PriorityVIP, nil},
		{"vip", PriorityVIP, nil},
		{"  Mobile_Order ", PriorityMobile, nil},
		{"REGULAR", PriorityRegular, nil},
		{"regular", PriorityRegular, nil},
		{"", "", ErrInvalidPriority},
		{"URGENT", "", ErrInvalidPriority},
	}
	for _, c := range cases {
		got, err := ParsePriority(c.in)
		if !errors.Is(err, c.err) {
			t.Errorf("ParsePriority(%q) error = %v, want %v", c.in, err, c.err)
			continue
		}
		if got != c.want {
			t.Errorf("ParsePriority(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPriorityRanking(t *testing.T) {
	if PriorityVIP.Rank() <= PriorityMobile.Rank() {
		t.Error("VIP must outrank MOBILE_ORDER")
	}
	if PriorityMobile.Rank() <= PriorityRegular.Rank() {
		t.Error("MOBILE_ORDER must outrank REGULAR")
	}
	if Priority("BOGUS").Rank() != 0 {
		t.Error("invalid priority must rank 0")
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("QUEUED")
	if err != nil || got != StatusQueued {
		t.Fatalf("ParseStatus(QUEUED) = %q, %v", got, err)
	}
	if _, err := ParseStatus("done"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("ParseStatus(done) error = %v, want ErrInvalidStatus", err)
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusQueued, StatusPreparing} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestBefore(t *testing.T) {
	t1 := time.Now()
	t2 := t1.Add(time.Minute)

	vip := &Order{Priority: PriorityVIP, CreatedAt: t2, Seq: 2}
	regular := &Order{Priority: PriorityRegular, CreatedAt: t1, Seq: 1}

	// Higher priority wins regardless of creation order.
	if !vip.Before(regular) {
		t.Error("VIP created later must still sort ahead of REGULAR")
	}

	// FIFO within equal priority.
	first := &Order{Priority: PriorityRegular, CreatedAt: t1, Seq: 1}
	second := &Order{Priority: PriorityRegular, CreatedAt: t2, Seq: 2}
	if !first.Before(second) {
		t.Error("earlier creation must sort first within a tier")
	}

	// Sequence breaks exact-timestamp ties.
	a := &Order{Priority: PriorityRegular, CreatedAt: t1, Seq: 1}
	b := &Order{Priority: PriorityRegular, CreatedAt: t1, Seq: 2}
	if !a.Before(b) || b.Before(a) {
		t.Error("lower sequence must sort first on equal timestamps")
	}
}

func TestClone(t *testing.T) {
	now := time.Now()
	o := &Order{Items: []string{"Latte"}, StartedAt: &now}
	c := o.Clone()

	c.Items[0] = "Mocha"
	*c.StartedAt = now.Add(time.Hour)

	if o.Items[0] != "Latte" {
		t.Error("clone shares the items slice")
	}
	if !o.StartedAt.Equal(now) {
		t.Error("clone shares the started-at pointer")
	}
}
