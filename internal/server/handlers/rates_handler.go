package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/service/rates"
	"github.com/mamadbah2/boilerdesk/internal/service/staff"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
	"github.com/mamadbah2/boilerdesk/pkg/bangla"
)

const recentActivities = 10

// Home renders the day's price table and the recent activity feed.
func (h *PageHandler) Home(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()
	date := h.dateParam(ws, "home", c.Query("date"))

	err := ws.Dashboard.Load(ctx, date)

	recent, rerr := h.activity.Recent(ctx, recentActivities)
	if rerr != nil {
		h.logger.Warn("failed to read recent activity", zap.Error(rerr))
	}

	h.render(c, ws, statusFor(err), "home", gin.H{
		"Title":    "আজকের দাম",
		"Date":     date,
		"View":     ws.Dashboard.View(),
		"Activity": recent,
	})
}

func pricesURL(date string) string {
	return withQuery("/updateSellingRate", "date", date)
}

func (h *PageHandler) renderPrices(c *gin.Context, ws *Workspace, status int, date string) {
	h.render(c, ws, status, "prices", gin.H{
		"Title":  "দাম হালনাগাদ",
		"Date":   date,
		"View":   ws.Prices.View(),
		"Groups": h.bindings.Prices.Groups(),
		"Back":   pricesURL(date),
	})
}

// Prices lists a day's entries; edit and group open one group of one customer.
func (h *PageHandler) Prices(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()
	date := h.dateParam(ws, "updateSellingRate", c.Query("date"))

	err := ws.Prices.Load(ctx, date)
	if customer := c.Query("edit"); err == nil && customer != "" {
		group := c.DefaultQuery("group", string(models.RateGroupProposal))
		if _, err = ws.Prices.Open(customer, group); err != nil {
			h.surface(ws, "updateSellingRate", err)
		}
	}
	h.renderPrices(c, ws, statusFor(err), date)
}

// SavePrice submits one group of one customer's entry.
func (h *PageHandler) SavePrice(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()
	date := h.dateParam(ws, "updateSellingRate", c.PostForm("date"))
	customer, group := c.PostForm("customer"), c.PostForm("group")

	var err error
	if customer == "" {
		err = fmt.Errorf("customer: %w", viewstate.ErrRowNotFound)
	} else if err = openDraft(ctx, ws.Prices, date, customer, group); err == nil {
		err = ws.Prices.Submit(ctx, formValues(c, rates.FieldBig, rates.FieldSmall))
	}

	if err != nil {
		h.surface(ws, "updateSellingRate", err)
		h.renderPrices(c, ws, statusFor(err), date)
		return
	}
	h.seeOther(c, pricesURL(date))
}

// CancelPrice discards the open price draft.
func (h *PageHandler) CancelPrice(c *gin.Context) {
	ws := h.workspace(c)
	_ = ws.Prices.Cancel()
	h.seeOther(c, pricesURL(c.PostForm("date")))
}

// ConfirmDeletePrice asks before a customer's entry is removed.
func (h *PageHandler) ConfirmDeletePrice(c *gin.Context) {
	ws := h.workspace(c)
	date := h.dateParam(ws, "updateSellingRate", c.Query("date"))
	customer := c.Query("customer")

	h.render(c, ws, http.StatusOK, "confirm", gin.H{
		"Title":   "নিশ্চিত করুন",
		"Message": fmt.Sprintf("%s তারিখে %s এর দাম মুছে ফেলবেন?", bangla.Digits(date), customer),
		"Action":  "/updateSellingRate/delete",
		"Fields":  map[string]string{"date": date, "customer": customer},
		"Back":    pricesURL(date),
	})
}

// DeletePrice removes a customer's entry once confirmed.
func (h *PageHandler) DeletePrice(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()
	date := h.dateParam(ws, "updateSellingRate", c.PostForm("date"))

	err := ensureLoaded(ctx, ws.Prices, date)
	if err == nil {
		err = ws.Prices.Delete(ctx, c.PostForm("customer"), c.PostForm("confirm") == "yes")
	}

	switch {
	case err == nil, errors.Is(err, viewstate.ErrNotConfirmed):
		h.seeOther(c, pricesURL(date))
	default:
		h.surface(ws, "updateSellingRate", err)
		h.renderPrices(c, ws, statusFor(err), date)
	}
}

func (h *PageHandler) renderProposals(c *gin.Context, ws *Workspace, status int, date string) {
	view := ws.Proposals.View()
	values := draftValues(view.Draft, "")

	selected := make(map[string]bool)
	for _, name := range rates.SplitCustomers(values[rates.FieldCustomers]) {
		selected[name] = true
	}

	h.render(c, ws, status, "add_price", gin.H{
		"Title":    "নতুন দাম",
		"Date":     date,
		"View":     view,
		"Form":     values,
		"Selected": selected,
		"Back":     withQuery("/addPrice", "date", date),
	})
}

// AddPrice lists customers for the bulk proposal form.
func (h *PageHandler) AddPrice(c *gin.Context) {
	ws := h.workspace(c)
	date := h.dateParam(ws, "addPrice", c.Query("date"))
	err := ws.Proposals.Load(c.Request.Context(), date)
	h.renderProposals(c, ws, statusFor(err), date)
}

// CreatePrices creates the day's record for the ticked customers, or for all of
// them when none is ticked.
func (h *PageHandler) CreatePrices(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()
	date := h.dateParam(ws, "addPrice", c.PostForm("date"))

	raw := formValues(c, rates.FieldBig, rates.FieldSmall)
	raw[rates.FieldCustomers] = rates.JoinCustomers(c.PostFormArray(rates.FieldCustomers))

	err := openDraft(ctx, ws.Proposals, date, "", string(models.RateGroupProposal))
	if err == nil {
		err = ws.Proposals.Submit(ctx, raw)
	}
	if err != nil {
		h.surface(ws, "addPrice", err)
		h.renderProposals(c, ws, statusFor(err), date)
		return
	}
	h.seeOther(c, pricesURL(date))
}

func (h *PageHandler) renderCustomers(c *gin.Context, ws *Workspace, status int) {
	view := ws.Customers.View()
	h.render(c, ws, status, "customers", gin.H{
		"Title": "গ্রাহক",
		"View":  view,
		"Form":  draftValues(view.Draft, ""),
		"Back":  "/addCustomer",
	})
}

// Customers lists customers with the create form.
func (h *PageHandler) Customers(c *gin.Context) {
	ws := h.workspace(c)
	err := ws.Customers.Load(c.Request.Context(), viewstate.NoFilter{})
	h.renderCustomers(c, ws, statusFor(err))
}

// CreateCustomer adds a customer.
func (h *PageHandler) CreateCustomer(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()

	err := openDraft(ctx, ws.Customers, viewstate.NoFilter{}, "", staff.GroupCustomer)
	if err == nil {
		err = ws.Customers.Submit(ctx, formValues(c, staff.FieldName))
	}
	if err != nil {
		h.surface(ws, "addCustomer", err)
		h.renderCustomers(c, ws, statusFor(err))
		return
	}
	h.seeOther(c, "/addCustomer")
}
