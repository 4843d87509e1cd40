package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/infrastructure/apiclient"
)

func seededAddresses(context.Context) ([]domain.Address, error) {
	return []domain.Address{
		{ID: 1, AddressLine: "House 12, Road 5", Area: "Dhanmondi", City: "Dhaka", PostalCode: "1205", IsDefault: true, Type: domain.AddressWork},
		{ID: 3, AddressLine: "Plot 7", Area: "Gulshan", City: "Dhaka", Landmark: "Police Plaza"},
	}, nil
}

func TestAddressHandler_List_MarksDefault(t *testing.T) {
	e := newTestEcho(t)
	api := &stubCatalog{listAddressesFn: seededAddresses}
	fx := newSession(t, e, httptest.NewRequest(http.MethodGet, "/admin/addresses", nil), nil, testAdmin)

	if err := NewAddressHandler(api, zerolog.Nop()).List(fx.c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := fx.rec.Body.String()
	if fx.rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", fx.rec.Code)
	}
	for _, want := range []string{
		`<span class="badge">Default</span>`,
		`action="/admin/addresses/3/default"`,
		"near Police Plaza",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if strings.Contains(body, `action="/admin/addresses/1/default"`) {
		t.Fatal("default address must not offer set-default")
	}
}

func TestAddressHandler_Edit_UnknownAddress(t *testing.T) {
	e := newTestEcho(t)
	api := &stubCatalog{listAddressesFn: seededAddresses}
	fx := newSession(t, e, httptest.NewRequest(http.MethodGet, "/admin/addresses/9/edit", nil), nil, testAdmin)
	fx.c.SetParamNames("id")
	fx.c.SetParamValues("9")

	if err := NewAddressHandler(api, zerolog.Nop()).Edit(fx.c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if fx.rec.Code != http.StatusFound || fx.rec.Header().Get(echo.HeaderLocation) != addressesPath {
		t.Fatalf("expected redirect to list, got %d %q", fx.rec.Code, fx.rec.Header().Get(echo.HeaderLocation))
	}
	if got := flashText(e, fx.rec); got != "Address not found" {
		t.Fatalf("flash = %q", got)
	}
}

func TestAddressHandler_Create_SendsTrimmedAddress(t *testing.T) {
	e := newTestEcho(t)
	var got domain.Address
	api := &stubCatalog{
		createAddressFn: func(_ context.Context, a domain.Address) (*domain.Address, error) {
			got = a
			a.ID = 4
			return &a, nil
		},
	}
	req := formRequest(http.MethodPost, "/admin/addresses", url.Values{
		"address_line": {"  Plot 7  "},
		"area":         {"Gulshan"},
		"city":         {"Dhaka"},
		"type":         {"home"},
		"latitude":     {"23.7925"},
	})
	fx := newSession(t, e, req, nil, testAdmin)

	if err := NewAddressHandler(api, zerolog.Nop()).Create(fx.c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if fx.rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", fx.rec.Code, fx.rec.Body.String())
	}
	if got.AddressLine != "Plot 7" || got.Type != domain.AddressHome {
		t.Fatalf("unexpected address: %+v", got)
	}
	if got.Latitude == nil || *got.Latitude != 23.7925 || got.Longitude != nil {
		t.Fatalf("coordinates = %v, %v", got.Latitude, got.Longitude)
	}
	if msg := flashText(e, fx.rec); msg != "Address added" {
		t.Fatalf("flash = %q", msg)
	}
}

func TestAddressHandler_Update_Validation(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		apiErr    error
		wantError string
	}{
		{
			name:      "missing city",
			values:    url.Values{"address_line": {"Plot 7"}, "area": {"Gulshan"}},
			wantError: "city is required",
		},
		{
			name:      "bad latitude",
			values:    url.Values{"address_line": {"Plot 7"}, "area": {"Gulshan"}, "city": {"Dhaka"}, "latitude": {"123"}},
			wantError: "latitude must be a valid latitude",
		},
		{
			name:   "rejected by the API",
			values: url.Values{"address_line": {"Plot 7"}, "area": {"Gulshan"}, "city": {"Dhaka"}},
			apiErr: &apiclient.APIError{
				Status:  http.StatusUnprocessableEntity,
				Message: "The given data was invalid.",
				Errors:  apiclient.FieldErrors{{Field: "area", Messages: []string{"The area is not served."}}},
			},
			wantError: "The area is not served.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(t)
			api := &stubCatalog{
				updateAddressFn: func(_ context.Context, id int64, a domain.Address) (*domain.Address, error) {
					if tt.apiErr == nil {
						t.Fatalf("API must not be called")
					}
					return nil, tt.apiErr
				},
			}
			fx := newSession(t, e, formRequest(http.MethodPost, "/admin/addresses/3", tt.values), nil, testAdmin)
			fx.c.SetParamNames("id")
			fx.c.SetParamValues("3")

			if err := NewAddressHandler(api, zerolog.Nop()).Update(fx.c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			body := fx.rec.Body.String()
			if fx.rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", fx.rec.Code)
			}
			if !strings.Contains(body, tt.wantError) {
				t.Fatalf("missing %q in form", tt.wantError)
			}
			if !strings.Contains(body, `value="Plot 7"`) {
				t.Fatal("input not kept")
			}
		})
	}
}

func TestAddressHandler_SetDefaultAndDelete(t *testing.T) {
	tests := []struct {
		name      string
		call      func(h *AddressHandler, c echo.Context) error
		api       *stubCatalog
		wantFlash string
	}{
		{
			name: "set default",
			call: (*AddressHandler).SetDefault,
			api: &stubCatalog{defaultAddressFn: func(_ context.Context, id int64) error {
				if id != 3 {
					t.Errorf("id = %d", id)
				}
				return nil
			}},
			wantFlash: "Default address updated",
		},
		{
			name: "delete rejected",
			call: (*AddressHandler).Delete,
			api: &stubCatalog{deleteAddressFn: func(context.Context, int64) error {
				return &apiclient.APIError{Status: http.StatusNotFound, Message: "Resource not found"}
			}},
			wantFlash: "Resource not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(t)
			fx := newSession(t, e, formRequest(http.MethodPost, "/admin/addresses/3", nil), nil, testAdmin)
			fx.c.SetParamNames("id")
			fx.c.SetParamValues("3")

			if err := tt.call(NewAddressHandler(tt.api, zerolog.Nop()), fx.c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if fx.rec.Header().Get(echo.HeaderLocation) != addressesPath {
				t.Fatalf("expected redirect to list, got %q", fx.rec.Header().Get(echo.HeaderLocation))
			}
			if got := flashText(e, fx.rec); got != tt.wantFlash {
				t.Fatalf("flash = %q, want %q", got, tt.wantFlash)
			}
		})
	}
}
