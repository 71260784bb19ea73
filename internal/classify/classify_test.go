package classify

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestTransportNilIsSuccess(t *testing.T) {
	out := Transport(context.Background(), nil)
	if out.Verdict != Success {
		t.Fatal("expected nil error to classify as success")
	}
}

func TestTransportDeadlineExceededIsTimeout(t *testing.T) {
	out := Transport(context.Background(), context.DeadlineExceeded)
	if out.Verdict != Failure || out.Label != LabelTimeout {
		t.Fatalf("expected timeout failure, got %+v", out)
	}
}

func TestTransportNetOpErrIsConnectionError(t *testing.T) {
	err := &net.OpError{Op: "dial", Err: errPlain("refused")}
	out := Transport(context.Background(), err)
	if out.Verdict != Failure || out.Label != LabelConnectionError {
		t.Fatalf("expected connection_error, got %+v", out)
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }

func TestStatusBelow500IsSuccess(t *testing.T) {
	for _, code := range []int{200, 201, 301, 400, 404, 499} {
		out := Status(code)
		if out.Verdict != Success {
			t.Fatalf("expected %d to classify as success", code)
		}
	}
}

func TestStatusAtOrAbove500IsFailure(t *testing.T) {
	for _, code := range []int{500, 502, 503, 599} {
		out := Status(code)
		if out.Verdict != Failure || out.Label != LabelHTTPError {
			t.Fatalf("expected %d to classify as http_error failure, got %+v", code, out)
		}
	}
}

func TestIsCancellationDistinguishesFromProviderTimeout(t *testing.T) {
	reqCtx, cancelReq := context.WithCancel(context.Background())
	attemptCtx, cancelAttempt := context.WithTimeout(reqCtx, time.Hour)
	defer cancelAttempt()

	cancelReq()
	<-attemptCtx.Done()

	if !IsCancellation(reqCtx, attemptCtx, attemptCtx.Err()) {
		t.Fatal("expected client cancellation to be detected")
	}
}

func TestIsCancellationFalseWhenAttemptDeadlineFired(t *testing.T) {
	reqCtx := context.Background()
	attemptCtx, cancel := context.WithTimeout(reqCtx, time.Millisecond)
	defer cancel()
	<-attemptCtx.Done()

	if IsCancellation(reqCtx, attemptCtx, attemptCtx.Err()) {
		t.Fatal("expected provider-attributable timeout not to be classified as cancellation")
	}
}
