package social

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"socialnet/internal/model"
)

// SalePost offers an item for sale. Price changes and the sold mark require
// the owner's password; once sold, a post stays sold.
type SalePost struct {
	basePost
	description string
	location    string

	// guarded by basePost.mu
	price float64
	sold  bool
}

func newSalePost(owner *User, payload model.SalePayload) (*SalePost, error) {
	if payload.Price < 0 || math.IsNaN(payload.Price) || math.IsInf(payload.Price, 0) {
		return nil, model.ErrInvalidPrice
	}
	p := &SalePost{
		description: payload.Description,
		location:    payload.Location,
		price:       payload.Price,
	}
	p.init(model.PostKindSale, owner)
	return p, nil
}

func (p *SalePost) Description() string { return p.description }
func (p *SalePost) Location() string    { return p.location }

func (p *SalePost) Price() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.price
}

func (p *SalePost) IsSold() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sold
}

// ApplyDiscount lowers the price by pct percent.
func (p *SalePost) ApplyDiscount(pct float64, password string) error {
	if !p.owner.dir.VerifyOwnerPassword(p.owner.name, password) {
		return model.ErrWrongPassword
	}
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return model.ErrInvalidDiscount
	}

	p.mu.Lock()
	p.price = p.price * (1 - pct/100)
	price := p.price
	p.mu.Unlock()

	p.record(model.ActivityDiscount, fmt.Sprintf("Discount on %s product! the new price is: %s",
		p.owner.name, formatExactPrice(price)))
	return nil
}

// MarkSold marks the item sold. Marking an already sold item is harmless.
func (p *SalePost) MarkSold(password string) error {
	if !p.owner.dir.VerifyOwnerPassword(p.owner.name, password) {
		return model.ErrWrongPassword
	}

	p.mu.Lock()
	already := p.sold
	p.sold = true
	p.mu.Unlock()

	if !already {
		p.record(model.ActivitySold, p.owner.name+"'s product is sold")
	}
	return nil
}

func (p *SalePost) Render() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.renderLocked()
}

func (p *SalePost) View() model.PostView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v := p.viewLocked(p.renderLocked())
	price, sold := p.price, p.sold
	v.Price = &price
	v.IsSold = &sold
	return v
}

// renderLocked shows the truncated price while the item is for sale and the
// exact price once it is sold.
func (p *SalePost) renderLocked() string {
	status := "For sale!"
	price := strconv.FormatFloat(math.Trunc(p.price), 'f', 0, 64)
	if p.sold {
		status = "Sold!"
		price = formatExactPrice(p.price)
	}
	return fmt.Sprintf("%s posted a product for sale:\n%s %s, price: %s, pickup from: %s\n",
		p.owner.name, status, p.description, price, p.location)
}

func (p *SalePost) record(kind, message string) {
	p.owner.dir.activity.Record(model.Activity{
		Kind:    kind,
		Actor:   p.owner.name,
		PostID:  p.id,
		Message: message,
		At:      time.Now(),
	})
}

// formatExactPrice prints the shortest exact representation, always with a
// fractional part: 90 -> "90.0", 72.9 -> "72.9".
func formatExactPrice(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
