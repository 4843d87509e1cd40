package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

const addressesPath = "/admin/addresses"

var addressTypes = []string{domain.AddressHome, domain.AddressWork, domain.AddressOther}

// AddressHandler manages the signed-in admin's saved addresses.
type AddressHandler struct {
	api ports.AddressAPI
	log zerolog.Logger
}

func NewAddressHandler(api ports.AddressAPI, log zerolog.Logger) *AddressHandler {
	return &AddressHandler{api: api, log: log}
}

type addressFormData struct {
	Types []string
}

func (h *AddressHandler) List(c echo.Context) error {
	list, err := h.api.ListAddresses(c.Request().Context())
	if expired(c, err) {
		return nil
	}
	p := newPage(c, "Addresses", "addresses")
	if err != nil {
		h.log.Warn().Err(err).Msg("list addresses")
		p.Error = "Could not load addresses"
	}
	p.Data = list
	return c.Render(http.StatusOK, "addresses", p)
}

func (h *AddressHandler) New(c echo.Context) error {
	p := newPage(c, "New address", "addresses")
	p.Form = addressForm{}
	p.Data = addressFormData{Types: addressTypes}
	return c.Render(http.StatusOK, "address_form", p)
}

// Edit loads the address from the account's list; the API has no
// single-address lookup.
func (h *AddressHandler) Edit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	list, err := h.api.ListAddresses(c.Request().Context())
	if err != nil {
		return actionFailed(c, h.log, err, "Could not load address", addressesPath)
	}
	for i := range list {
		if list[i].ID == id {
			p := newPage(c, "Edit address", "addresses")
			p.Form = addressFormFrom(&list[i])
			p.Data = addressFormData{Types: addressTypes}
			return c.Render(http.StatusOK, "address_form", p)
		}
	}
	return actionFailed(c, h.log, domain.ErrNotFound, "Address not found", addressesPath)
}

func (h *AddressHandler) Create(c echo.Context) error {
	return h.save(c, 0)
}

func (h *AddressHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return h.save(c, id)
}

func (h *AddressHandler) save(c echo.Context, id int64) error {
	var form addressForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	form.ID = id
	form.trim()

	title := "New address"
	if id != 0 {
		title = "Edit address"
	}
	p := newPage(c, title, "addresses")
	p.Form = &form
	p.Data = addressFormData{Types: addressTypes}

	if err := c.Validate(&form); err != nil {
		return c.Render(formFailed(&p, err, ""), "address_form", p)
	}

	ctx := c.Request().Context()
	var err error
	if id == 0 {
		_, err = h.api.CreateAddress(ctx, form.address())
	} else {
		_, err = h.api.UpdateAddress(ctx, id, form.address())
	}
	if expired(c, err) {
		return nil
	}
	if err != nil {
		h.log.Info().Err(err).Int64("address_id", id).Msg("save address rejected")
		return c.Render(formFailed(&p, err, "Could not save address"), "address_form", p)
	}

	if id == 0 {
		return succeeded(c, "Address added", addressesPath)
	}
	return succeeded(c, "Address updated", addressesPath)
}

func (h *AddressHandler) SetDefault(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.api.SetDefaultAddress(c.Request().Context(), id); err != nil {
		return actionFailed(c, h.log, err, "Could not set default address", addressesPath)
	}
	return succeeded(c, "Default address updated", addressesPath)
}

func (h *AddressHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.api.DeleteAddress(c.Request().Context(), id); err != nil {
		return actionFailed(c, h.log, err, "Could not delete address", addressesPath)
	}
	return succeeded(c, "Address deleted", addressesPath)
}
