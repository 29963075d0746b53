package recordstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
)

// PricePair is the wire form of a big/small boiler pair.
type PricePair struct {
	BoilerBig   float64 `json:"boilerBig"`
	BoilerSmall float64 `json:"boilerSmall"`
}

// ProposalPrice nests the proposal under the proposer's key, as stored remotely.
type ProposalPrice struct {
	SorifVai PricePair `json:"sorifVai"`
}

// ActualSellingPrice nests the realised price under the seller's key.
type ActualSellingPrice struct {
	RonyVai PricePair `json:"ronyVai"`
}

// RateDTO is one customer row of a price record.
type RateDTO struct {
	CustomerName       string             `json:"customerName"`
	ProposalPrice      ProposalPrice      `json:"proposalPrice"`
	ActualSellingPrice ActualSellingPrice `json:"actualSellingPrice"`
	Piece              PricePair          `json:"piece"`
}

// PriceRecordDTO is the body of GET /sellingRate.
type PriceRecordDTO struct {
	Date  string    `json:"date"`
	Rates []RateDTO `json:"rates"`
}

type createRatesRequest struct {
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	Rates     []RateDTO `json:"rates"`
}

type rateKey struct {
	Date         string `json:"date"`
	CustomerName string `json:"customerName"`
}

func pairFromModel(p models.BoilerPair) PricePair {
	return PricePair{BoilerBig: p.Big, BoilerSmall: p.Small}
}

func (p PricePair) model() models.BoilerPair {
	return models.BoilerPair{Big: p.BoilerBig, Small: p.BoilerSmall}
}

// RateFromModel converts a domain entry to its wire form.
func RateFromModel(e models.RateEntry) RateDTO {
	return RateDTO{
		CustomerName:       e.CustomerName,
		ProposalPrice:      ProposalPrice{SorifVai: pairFromModel(e.Proposal)},
		ActualSellingPrice: ActualSellingPrice{RonyVai: pairFromModel(e.Actual)},
		Piece:              pairFromModel(e.Piece),
	}
}

// Model converts the wire form to a domain entry.
func (d RateDTO) Model() models.RateEntry {
	return models.RateEntry{
		CustomerName: d.CustomerName,
		Proposal:     d.ProposalPrice.SorifVai.model(),
		Actual:       d.ActualSellingPrice.RonyVai.model(),
		Piece:        d.Piece.model(),
	}
}

// RatePatch builds the partial-update body carrying only the given group.
func RatePatch(date, customer string, group models.RateGroup, pair models.BoilerPair) map[string]any {
	body := map[string]any{
		"date":         date,
		"customerName": customer,
	}
	switch group {
	case models.RateGroupProposal:
		body["proposalPrice"] = ProposalPrice{SorifVai: pairFromModel(pair)}
	case models.RateGroupActual:
		body["actualSellingPrice"] = ActualSellingPrice{RonyVai: pairFromModel(pair)}
	case models.RateGroupPiece:
		body["piece"] = pairFromModel(pair)
	}
	return body
}

// RatesByDate reads the price record of one day. A missing record is returned as
// an empty record, not an error.
func (c *Client) RatesByDate(ctx context.Context, date string) (models.PriceRecord, error) {
	result := new(PriceRecordDTO)
	path := "/sellingRate?date=" + url.QueryEscape(date)

	if err := c.do(ctx, http.MethodGet, path, nil, result); err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.PriceRecord{Date: date}, nil
		}
		return models.PriceRecord{}, err
	}

	record := models.PriceRecord{Date: date, Entries: make([]models.RateEntry, 0, len(result.Rates))}
	for _, r := range result.Rates {
		record.Entries = append(record.Entries, r.Model())
	}
	return record, nil
}

// CreateRates creates the price record of a day for the given entries.
func (c *Client) CreateRates(ctx context.Context, date string, entries []models.RateEntry) error {
	if len(entries) == 0 {
		return errors.New("create rates: no entries")
	}

	payload := createRatesRequest{
		Date:      date,
		CreatedAt: time.Now().UTC(),
		Rates:     make([]RateDTO, 0, len(entries)),
	}
	for _, e := range entries {
		payload.Rates = append(payload.Rates, RateFromModel(e))
	}

	if err := c.do(ctx, http.MethodPost, "/sellingRate", payload, nil); err != nil {
		return fmt.Errorf("create rates for %s: %w", date, err)
	}
	return nil
}

// PatchRate updates one group of one customer's entry, leaving the others as stored.
func (c *Client) PatchRate(ctx context.Context, date, customer string, group models.RateGroup, pair models.BoilerPair) error {
	if err := c.do(ctx, http.MethodPatch, "/sellingRate", RatePatch(date, customer, group, pair), nil); err != nil {
		return fmt.Errorf("update %s rate of %s on %s: %w", group, customer, date, err)
	}
	return nil
}

// DeleteRate removes one customer's entry from a day's record.
func (c *Client) DeleteRate(ctx context.Context, date, customer string) error {
	body := rateKey{Date: date, CustomerName: customer}
	if err := c.do(ctx, http.MethodDelete, "/sellingRate/customer", body, nil); err != nil {
		return fmt.Errorf("delete rate of %s on %s: %w", customer, date, err)
	}
	return nil
}
