package accounts

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func validAddress() AddressRequest {
	return AddressRequest{
		Name:     "asha nair",
		Mobile:   "9876543210",
		Pincode:  "682001",
		House:    "rose villa",
		Street:   "mg road",
		City:     "kochi",
		District: "Ernakulam",
		State:    "Kerala",
	}
}

func newAddressHarness(t *testing.T) (AddressService, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc, err := NewAddressService(repo, fakeTxRunner{})
	if err != nil {
		t.Fatalf("NewAddressService: %v", err)
	}
	return svc, repo
}

func TestCreateAddressFirstBecomesDefault(t *testing.T) {
	svc, _ := newAddressHarness(t)
	ctx := context.Background()
	accountID := uuid.New()

	first, err := svc.Create(ctx, accountID, validAddress())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("first address should be default")
	}
	if first.Name != "Asha Nair" {
		t.Fatalf("expected title-cased name, got %q", first.Name)
	}
	if !strings.Contains(first.Snapshot, "Ernakulam, Kerala") {
		t.Fatalf("snapshot missing district/state line: %q", first.Snapshot)
	}
	if !strings.Contains(first.Snapshot, "Pincode - 682001") {
		t.Fatalf("snapshot missing pincode: %q", first.Snapshot)
	}

	second, err := svc.Create(ctx, accountID, validAddress())
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.IsDefault {
		t.Fatal("second address should not be default")
	}
}

func TestCreateAddressValidation(t *testing.T) {
	svc, _ := newAddressHarness(t)
	ctx := context.Background()
	accountID := uuid.New()

	cases := []struct {
		name   string
		mutate func(*AddressRequest)
	}{
		{"bad mobile prefix", func(r *AddressRequest) { r.Mobile = "1234567890" }},
		{"short mobile", func(r *AddressRequest) { r.Mobile = "98765" }},
		{"bad pincode", func(r *AddressRequest) { r.Pincode = "012345" }},
		{"short house", func(r *AddressRequest) { r.House = "ab" }},
		{"numeric district", func(r *AddressRequest) { r.District = "Dist4" }},
		{"unknown state", func(r *AddressRequest) { r.State = "Atlantis" }},
	}
	for _, tc := range cases {
		req := validAddress()
		tc.mutate(&req)
		_, err := svc.Create(ctx, accountID, req)
		if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestSetDefaultMovesFlag(t *testing.T) {
	svc, repo := newAddressHarness(t)
	ctx := context.Background()
	accountID := uuid.New()

	first, err := svc.Create(ctx, accountID, validAddress())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, accountID, validAddress())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.SetDefault(ctx, accountID, second.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}
	if !repo.addresses[second.ID].IsDefault {
		t.Fatal("second address should now be default")
	}
	if repo.addresses[first.ID].IsDefault {
		t.Fatal("first address should have lost the default flag")
	}
}

func TestAddressOwnershipEnforced(t *testing.T) {
	svc, _ := newAddressHarness(t)
	ctx := context.Background()

	owner := uuid.New()
	created, err := svc.Create(ctx, owner, validAddress())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	intruder := uuid.New()
	if _, err := svc.Get(ctx, intruder, created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign address, got %v", err)
	}
	if err := svc.Delete(ctx, intruder, created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found deleting foreign address, got %v", err)
	}
}
