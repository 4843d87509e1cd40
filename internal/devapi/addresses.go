package devapi

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/chaldal/admin-console/internal/core/domain"
)

type addressInput struct {
	AddressLine        string `form:"address_line" validate:"required,max=255"`
	Area               string `form:"area" validate:"required,max=100"`
	City               string `form:"city" validate:"required,max=100"`
	PostalCode         string `form:"postal_code" validate:"max=20"`
	Landmark           string `form:"landmark" validate:"max=255"`
	Type               string `form:"type" validate:"omitempty,oneof=home work other"`
	ContactPersonName  string `form:"contact_person_name" validate:"max=255"`
	ContactPersonPhone string `form:"contact_person_phone" validate:"max=20"`
}

func addressFrom(v values) (addressInput, *float64, *float64) {
	in := addressInput{
		AddressLine:        v.str("address_line"),
		Area:               v.str("area"),
		City:               v.str("city"),
		PostalCode:         v.str("postal_code"),
		Landmark:           v.str("landmark"),
		Type:               v.str("type"),
		ContactPersonName:  v.str("contact_person_name"),
		ContactPersonPhone: v.str("contact_person_phone"),
	}
	return in, v.optionalFloat("latitude"), v.optionalFloat("longitude")
}

func (v values) optionalFloat(k string) *float64 {
	f, err := strconv.ParseFloat(v.str(k), 64)
	if err != nil {
		return nil
	}
	return &f
}

// Addresses lists userID's addresses, oldest first.
func (s *Catalog) Addresses(userID int64) []domain.Address {
	s.mu.RLock()
	out := make([]domain.Address, 0)
	for _, a := range s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SaveAddress creates or updates a. The first address of a user becomes
// the default; updates keep the stored default flag.
func (s *Catalog) SaveAddress(a domain.Address) (domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		s.lastAddressID++
		a.ID = s.lastAddressID
		a.IsDefault = !s.hasAddresses(a.UserID)
	} else {
		old, ok := s.addresses[a.ID]
		if !ok || old.UserID != a.UserID {
			return domain.Address{}, domain.ErrNotFound
		}
		a.IsDefault = old.IsDefault
	}
	s.addresses[a.ID] = a
	return a, nil
}

// SetDefaultAddress marks id as the only default address of its owner.
func (s *Catalog) SetDefaultAddress(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.addresses[id]; !ok || a.UserID != userID {
		return domain.ErrNotFound
	}
	for aid, a := range s.addresses {
		if a.UserID == userID {
			a.IsDefault = aid == id
			s.addresses[aid] = a
		}
	}
	return nil
}

// DeleteAddress removes id. Removing the default promotes the oldest
// remaining address.
func (s *Catalog) DeleteAddress(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok || a.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.addresses, id)
	if !a.IsDefault {
		return nil
	}
	var next int64
	for aid, other := range s.addresses {
		if other.UserID == userID && (next == 0 || aid < next) {
			next = aid
		}
	}
	if next != 0 {
		promoted := s.addresses[next]
		promoted.IsDefault = true
		s.addresses[next] = promoted
	}
	return nil
}

func (s *Catalog) hasAddresses(userID int64) bool {
	for _, a := range s.addresses {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// ── addresses ────────────────────────────────────────────────────────────────

func (s *Server) listAddresses(c echo.Context) error {
	return ok(c, http.StatusOK, map[string]any{"addresses": s.Catalog.Addresses(ctxUser(c).ID)}, "")
}

func (s *Server) createAddress(c echo.Context) error {
	return s.saveAddress(c, 0, http.StatusCreated, "Address added successfully")
}

func (s *Server) updateAddress(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	return s.saveAddress(c, id, http.StatusOK, "Address updated successfully")
}

func (s *Server) saveAddress(c echo.Context, id int64, status int, msg string) error {
	v, err := readValues(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	in, lat, lng := addressFrom(v)
	if fe := check(in); fe != nil {
		return invalid(c, fe)
	}
	saved, err := s.Catalog.SaveAddress(domain.Address{
		ID:                 id,
		UserID:             ctxUser(c).ID,
		AddressLine:        in.AddressLine,
		Area:               in.Area,
		City:               in.City,
		PostalCode:         in.PostalCode,
		Landmark:           in.Landmark,
		Type:               in.Type,
		Latitude:           lat,
		Longitude:          lng,
		ContactPersonName:  in.ContactPersonName,
		ContactPersonPhone: in.ContactPersonPhone,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, status, map[string]any{"address": saved}, msg)
}

func (s *Server) setDefaultAddress(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := s.Catalog.SetDefaultAddress(ctxUser(c).ID, id); err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Default address updated successfully")
}

func (s *Server) deleteAddress(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := s.Catalog.DeleteAddress(ctxUser(c).ID, id); err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, nil, "Address deleted successfully")
}
