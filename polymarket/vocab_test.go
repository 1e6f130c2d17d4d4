package polymarket

import (
	"errors"
	"testing"

	"github.com/betbot/govenue/pkg/report"
)

func TestMapOrderStatus(t *testing.T) {
	cases := []struct {
		in   OrderStatus
		want report.OrderStatus
	}{
		{OrderStatusLive, report.OrderStatusAccepted},
		{OrderStatusMatched, report.OrderStatusFilled},
		{OrderStatusDelayed, report.OrderStatusSubmitted},
		{OrderStatusUnmatched, report.OrderStatusRejected},
		{OrderStatusCanceled, report.OrderStatusCanceled},
	}
	for _, c := range cases {
		got, err := MapOrderStatus(c.in)
		if err != nil {
			t.Fatalf("MapOrderStatus(%s) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("MapOrderStatus(%s) got=%s want=%s", c.in, got, c.want)
		}
	}

	if _, err := MapOrderStatus("SETTLED"); !errors.Is(err, ErrUnmappedVocabulary) {
		t.Fatalf("unknown status err=%v, want ErrUnmappedVocabulary", err)
	}
}

func TestMapTimeInForce(t *testing.T) {
	cases := []struct {
		in   OrderType
		want report.TimeInForce
	}{
		{OrderTypeGTC, report.TimeInForceGTC},
		{OrderTypeGTD, report.TimeInForceGTD},
		{OrderTypeFOK, report.TimeInForceFOK},
		{OrderTypeFAK, report.TimeInForceIOC},
	}
	for _, c := range cases {
		got, err := MapTimeInForce(c.in)
		if err != nil {
			t.Fatalf("MapTimeInForce(%s) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("MapTimeInForce(%s) got=%s want=%s", c.in, got, c.want)
		}
	}

	if _, err := MapTimeInForce("IOC"); !errors.Is(err, ErrUnmappedVocabulary) {
		t.Fatalf("venue never sends IOC, err=%v, want ErrUnmappedVocabulary", err)
	}
}

func TestMapOrderSide(t *testing.T) {
	got, err := MapOrderSide(SideBuy)
	if err != nil || got != report.OrderSideBuy {
		t.Fatalf("MapOrderSide(BUY) got=(%s, %v)", got, err)
	}
	got, err = MapOrderSide(SideSell)
	if err != nil || got != report.OrderSideSell {
		t.Fatalf("MapOrderSide(SELL) got=(%s, %v)", got, err)
	}
	if _, err := MapOrderSide("HOLD"); !errors.Is(err, ErrUnmappedVocabulary) {
		t.Fatalf("unknown side err=%v, want ErrUnmappedVocabulary", err)
	}
}

func TestMapLiquiditySide(t *testing.T) {
	got, err := MapLiquiditySide(LiquiditySideMaker)
	if err != nil || got != report.LiquiditySideMaker {
		t.Fatalf("MapLiquiditySide(MAKER) got=(%s, %v)", got, err)
	}
	got, err = MapLiquiditySide(LiquiditySideTaker)
	if err != nil || got != report.LiquiditySideTaker {
		t.Fatalf("MapLiquiditySide(TAKER) got=(%s, %v)", got, err)
	}
	if _, err := MapLiquiditySide(""); !errors.Is(err, ErrUnmappedVocabulary) {
		t.Fatalf("empty side err=%v, want ErrUnmappedVocabulary", err)
	}
}
