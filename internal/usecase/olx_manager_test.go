package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/user/feed-service/internal/olx"
)

func newTestOlxManager(props *fakePropertyRepo, metas *fakeMetadataRepo, maxListings int) OlxManager {
	return NewOlxManager(props, metas, olx.NewValidator([]string{"BA", "RJ", "SP", "MG"}), maxListings)
}

func TestReadinessWithoutMetadata(t *testing.T) {
	props := newFakePropertyRepo()
	props.seed(exportableProperty(1, "P-1"))

	// Missing metadata means the gate runs against an empty form: the record
	// fields pass, the contact and address rules fail.
	res, err := newTestOlxManager(props, newFakeMetadataRepo(), 10).Readiness(context.Background(), 1)
	if err != nil {
		t.Fatalf("Readiness returned error: %v", err)
	}
	if res.IsValid {
		t.Fatal("listing without metadata reported ready")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected violations for the empty metadata form")
	}
}

func TestReadinessComplete(t *testing.T) {
	props := newFakePropertyRepo()
	props.seed(exportableProperty(1, "P-1"))
	metas := newFakeMetadataRepo()
	metas.metas[1] = completeMetadata(1)

	res, err := newTestOlxManager(props, metas, 10).Readiness(context.Background(), 1)
	if err != nil {
		t.Fatalf("Readiness returned error: %v", err)
	}
	if !res.IsValid {
		t.Errorf("complete listing reported violations: %v", res.Errors)
	}
}

func TestReadinessPropertyNotFound(t *testing.T) {
	_, err := newTestOlxManager(newFakePropertyRepo(), newFakeMetadataRepo(), 10).Readiness(context.Background(), 99)
	if !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("error = %v, want ErrPropertyNotFound", err)
	}
}

func TestGetMetadataEmptyForm(t *testing.T) {
	props := newFakePropertyRepo()
	props.seed(exportableProperty(1, "P-1"))

	meta, err := newTestOlxManager(props, newFakeMetadataRepo(), 10).GetMetadata(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetMetadata returned error: %v", err)
	}
	if meta.PropertyID != 1 {
		t.Errorf("PropertyID = %d, want 1", meta.PropertyID)
	}
	if meta.ContactName != nil || meta.PostalCode != nil {
		t.Errorf("empty form carries values: %+v", meta)
	}
}

func TestSaveMetadataReturnsVerdict(t *testing.T) {
	props := newFakePropertyRepo()
	props.seed(exportableProperty(1, "P-1"))
	metas := newFakeMetadataRepo()

	res, err := newTestOlxManager(props, metas, 10).SaveMetadata(context.Background(), completeMetadata(1))
	if err != nil {
		t.Fatalf("SaveMetadata returned error: %v", err)
	}
	if !res.IsValid {
		t.Errorf("verdict after complete save: %v", res.Errors)
	}
	if len(metas.saved) != 1 || metas.saved[0] != 1 {
		t.Errorf("saved = %v, want [1]", metas.saved)
	}
}

func TestSaveMetadataUnknownProperty(t *testing.T) {
	_, err := newTestOlxManager(newFakePropertyRepo(), newFakeMetadataRepo(), 10).
		SaveMetadata(context.Background(), completeMetadata(42))
	if !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("error = %v, want ErrPropertyNotFound", err)
	}
}

func TestSetMarkedQuota(t *testing.T) {
	props := newFakePropertyRepo()
	props.seed(exportableProperty(1, "P-1"))
	props.seed(exportableProperty(2, "P-2"))
	props.seed(exportableProperty(3, "P-3"))
	metas := newFakeMetadataRepo()

	mgr := newTestOlxManager(props, metas, 2)
	ctx := context.Background()

	if err := mgr.SetMarked(ctx, "broker-1", 1, true); err != nil {
		t.Fatalf("SetMarked(1) returned error: %v", err)
	}
	if err := mgr.SetMarked(ctx, "broker-1", 2, true); err != nil {
		t.Fatalf("SetMarked(2) returned error: %v", err)
	}
	if err := mgr.SetMarked(ctx, "broker-1", 3, true); !errors.Is(err, ErrOlxQuotaExceeded) {
		t.Fatalf("error = %v, want ErrOlxQuotaExceeded", err)
	}

	// Unmarking is always allowed and frees a slot.
	if err := mgr.SetMarked(ctx, "broker-1", 1, false); err != nil {
		t.Fatalf("unmark returned error: %v", err)
	}
	if err := mgr.SetMarked(ctx, "broker-1", 3, true); err != nil {
		t.Fatalf("SetMarked(3) after unmark returned error: %v", err)
	}
}

func TestSetMarkedOwnership(t *testing.T) {
	props := newFakePropertyRepo()
	props.seed(exportableProperty(1, "P-1"))

	err := newTestOlxManager(props, newFakeMetadataRepo(), 10).SetMarked(context.Background(), "broker-2", 1, true)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("error = %v, want ErrNotOwner", err)
	}
}

func TestSetMarkedUnknownProperty(t *testing.T) {
	err := newTestOlxManager(newFakePropertyRepo(), newFakeMetadataRepo(), 10).
		SetMarked(context.Background(), "broker-1", 7, true)
	if !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("error = %v, want ErrPropertyNotFound", err)
	}
}
