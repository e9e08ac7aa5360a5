package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Nasdaq       AssetType = "NASDAQ"
	SP           AssetType = "SP"
	Conservative AssetType = "CONSERVATIVE"
	Cash         AssetType = "CASH"
)

// AssetTypes lists every category in display order.
var AssetTypes = []AssetType{Nasdaq, SP, Conservative, Cash}

type (
	// AssetType is the holding category as the asset service spells it.
	AssetType string

	// Asset is a named holding. The asset service owns it; the client only
	// keeps the copy it last fetched.
	Asset struct {
		ID     int64           `json:"id,omitempty"`
		Type   AssetType       `json:"assetType"`
		Name   string          `json:"name"`
		Amount decimal.Decimal `json:"amount"`
	}

	// AssetInput carries the raw fields of the add-asset form.
	AssetInput struct {
		Type   string
		Name   string
		Amount string
	}
)

var (
	ErrInvalidType   = errors.New("invalid asset type")
	ErrEmptyName     = errors.New("empty asset name")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNameTooLong   = errors.New("asset name too long (max 100 characters)")
)

var typeLabels = map[AssetType]string{
	Nasdaq:       "NASDAQ holdings",
	SP:           "S&P 500 holdings",
	Conservative: "Conservative",
	Cash:         "Cash",
}

// ParseAssetType accepts either the wire name ("NASDAQ") or the form key
// ("nasdaq").
func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// Valid reports whether t is one of the known categories.
func (t AssetType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Key is the lower-case form used in element ids and form values.
func (t AssetType) Key() string {
	return strings.ToLower(string(t))
}

// Label returns the human readable category name.
func (t AssetType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (a Asset) Validate() error {
	if !a.Type.Valid() {
		return ErrInvalidType
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 100 {
		return ErrNameTooLong
	}
	if !a.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Asset validates the form fields and converts them into an Asset ready to be
// sent. Nothing leaves the process when this returns an error.
func (in AssetInput) Asset() (Asset, error) {
	t, err := ParseAssetType(in.Type)
	if err != nil {
		return Asset{}, err
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Asset{}, err
	}
	a := Asset{Type: t, Name: strings.TrimSpace(in.Name), Amount: amount}
	if err := a.Validate(); err != nil {
		return Asset{}, err
	}
	return a, nil
}
