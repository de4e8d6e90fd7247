package model

import (
	"errors"
	"time"
)

// PostKind tags the concrete variant of a post.
type PostKind string

// Post kinds
const (
	PostKindText  PostKind = "Text"
	PostKindImage PostKind = "Image"
	PostKindSale  PostKind = "Sale"
)

// ParsePostKind maps a client-supplied type tag to a PostKind.
func ParsePostKind(s string) (PostKind, error) {
	switch PostKind(s) {
	case PostKindText, PostKindImage, PostKindSale:
		return PostKind(s), nil
	default:
		return "", ErrUnknownPostKind
	}
}

// Payload carries the constructor arguments of a post variant.
type Payload interface {
	Kind() PostKind
}

// TextPayload is the content of a text post.
type TextPayload struct {
	Content string `json:"content"`
}

func (TextPayload) Kind() PostKind { return PostKindText }

// ImagePayload references the picture of an image post.
type ImagePayload struct {
	ImageURL string `json:"image_url"`
}

func (ImagePayload) Kind() PostKind { return PostKindImage }

// SalePayload describes an item offered for sale.
type SalePayload struct {
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
}

func (SalePayload) Kind() PostKind { return PostKindSale }

// Comment is a single (commenter, text) pair on a post.
type Comment struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PostView is the read model of a post handed to the presentation layer.
type PostView struct {
	ID        string    `json:"id"`
	Kind      PostKind  `json:"kind"`
	Owner     string    `json:"owner"`
	Rendered  string    `json:"rendered"`
	Likers    []string  `json:"likers"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"created_at"`

	// Sale posts only
	Price  *float64 `json:"price,omitempty"`
	IsSold *bool    `json:"is_sold,omitempty"`
}

// CreatePostRequest is the request body for publishing a post.
// Only the fields matching Kind are read.
type CreatePostRequest struct {
	Kind        string  `json:"kind"`
	Content     string  `json:"content,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Location    string  `json:"location,omitempty"`
}

// CreateCommentRequest is the request body for commenting on a post.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// DiscountRequest is the request body for discounting a sale post.
type DiscountRequest struct {
	Percent  float64 `json:"percent"`
	Password string  `json:"password"`
}

// SoldRequest is the request body for marking a sale post sold.
type SoldRequest struct {
	Password string `json:"password"`
}

// FeedResponse is one page of a user's timeline, newest first.
type FeedResponse struct {
	Posts      []PostView `json:"posts"`
	NextCursor *float64   `json:"next_cursor,omitempty"`
}

// Post errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrUnknownPostKind = errors.New("unknown post kind")
	ErrInvalidPayload  = errors.New("payload does not match post kind")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100 percent")
	ErrNotSalePost     = errors.New("post is not for sale")
	ErrContentRequired = errors.New("comment text is required")
	ErrFeedUnavailable = errors.New("timeline cache not configured")
)
