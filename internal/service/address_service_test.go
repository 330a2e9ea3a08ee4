package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T, name string, tables ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(tables...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func setupAddressServiceTest(t *testing.T) (*AddressService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t, "address_service_"+t.Name(), &models.Address{})
	return NewAddressService(repository.NewAddressRepository(db)), db
}

func validAddressInput() AddressInput {
	return AddressInput{
		Name:       "Asha Rao",
		Phone:      "+91 98765 43210",
		Line1:      "12 MG Road",
		Line2:      "Flat 4B",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560 001",
		Country:    "in",
	}
}

func TestResolveNormalizesFields(t *testing.T) {
	svc, _ := setupAddressServiceTest(t)

	address, err := svc.Resolve(1, validAddressInput())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if address.Phone != "+919876543210" {
		t.Fatalf("phone want +919876543210 got %q", address.Phone)
	}
	if address.PostalCode != "560001" {
		t.Fatalf("postal code want 560001 got %q", address.PostalCode)
	}
	if address.Country != "IN" {
		t.Fatalf("country want IN got %q", address.Country)
	}
}

func TestResolveDeduplicatesOnNormalizedTuple(t *testing.T) {
	svc, db := setupAddressServiceTest(t)

	first, err := svc.Resolve(1, validAddressInput())
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	// Same address with messy whitespace and spacing resolves to the
	// same stored row.
	messy := validAddressInput()
	messy.Name = "  Asha   Rao "
	messy.Line1 = "12  MG   Road"
	messy.PostalCode = "560001"
	second, err := svc.Resolve(1, messy)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("dedup want id %d got %d", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&models.Address{}).Count(&count).Error; err != nil {
		t.Fatalf("count addresses failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("address rows want 1 got %d", count)
	}
}

func TestResolveChangedAddressCreatesNewRow(t *testing.T) {
	svc, db := setupAddressServiceTest(t)

	first, err := svc.Resolve(1, validAddressInput())
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	changed := validAddressInput()
	changed.Line1 = "44 Residency Road"
	second, err := svc.Resolve(1, changed)
	if err != nil {
		t.Fatalf("changed resolve failed: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("changed address must not reuse row %d", first.ID)
	}

	var count int64
	if err := db.Model(&models.Address{}).Count(&count).Error; err != nil {
		t.Fatalf("count addresses failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("address rows want 2 got %d", count)
	}
}

func TestResolveScopedToOwner(t *testing.T) {
	svc, _ := setupAddressServiceTest(t)

	first, err := svc.Resolve(1, validAddressInput())
	if err != nil {
		t.Fatalf("user 1 resolve failed: %v", err)
	}
	second, err := svc.Resolve(2, validAddressInput())
	if err != nil {
		t.Fatalf("user 2 resolve failed: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("addresses of different users must not share row %d", first.ID)
	}
}

func TestResolveRejectsMissingFields(t *testing.T) {
	svc, _ := setupAddressServiceTest(t)

	for _, mutate := range []func(*AddressInput){
		func(in *AddressInput) { in.Name = "   " },
		func(in *AddressInput) { in.Phone = "" },
		func(in *AddressInput) { in.Line1 = "" },
		func(in *AddressInput) { in.City = "" },
		func(in *AddressInput) { in.State = "" },
		func(in *AddressInput) { in.PostalCode = "" },
	} {
		input := validAddressInput()
		mutate(&input)
		if _, err := svc.Resolve(1, input); !errors.Is(err, ErrAddressInvalid) {
			t.Fatalf("incomplete address want ErrAddressInvalid got %v", err)
		}
	}
}
