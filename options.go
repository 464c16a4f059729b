package conelab

// Discrete selection enums for the wizard. The zero value of every enum is
// "unset" so a fresh CustomizationState needs no explicit initialization.

type PaperType int

const (
	PaperTypeUnset PaperType = iota
	PaperTypeRefinedWhite
	PaperTypeUnbleachedBrown
	PaperTypeOrganicHemp
	PaperTypeRiceStraw
	PaperTypeGoldLeaf
	PaperTypeClearCellulose
)

type FilterType int

const (
	FilterTypeUnset FilterType = iota
	FilterTypeNone
	FilterTypePaperSpiral
	FilterTypePaperPleat
	FilterTypeWoodTip
	FilterTypeCeramicTip
	FilterTypeActivatedCharcoal
)

type ConeSize int

const (
	ConeSizeUnset ConeSize = iota
	ConeSizeSlim
	ConeSizeClassic
	ConeSizeKing
	ConeSizeGrand
)

type LotSize int

const (
	LotSizeUnset LotSize = iota
	LotSizeSample
	LotSize100
	LotSize500
	LotSize1000
	LotSize5000
	LotSize10000
	LotSizeCustom
)

// PaperOption is one selectable paper stock. Each option carries the
// material kind that renders it, so selection resolves to a variant once
// instead of re-branching every frame.
type PaperOption struct {
	Type     PaperType
	ID       string
	Label    string
	Material MaterialKind
}

var PaperOptions = []PaperOption{
	{PaperTypeRefinedWhite, "refined-white", "Refined White", PaperRefinedWhite},
	{PaperTypeUnbleachedBrown, "unbleached-brown", "Unbleached Brown", PaperUnbleachedBrown},
	{PaperTypeOrganicHemp, "organic-hemp", "Organic Hemp", PaperOrganicHemp},
	{PaperTypeRiceStraw, "rice-straw", "Rice Straw", PaperRiceStraw},
	{PaperTypeGoldLeaf, "gold-leaf", "Gold Leaf", PaperGoldLeaf},
	{PaperTypeClearCellulose, "clear-cellulose", "Clear Cellulose", PaperClearCellulose},
}

type FilterOption struct {
	Type     FilterType
	ID       string
	Label    string
	Material MaterialKind
}

var FilterOptions = []FilterOption{
	{FilterTypeNone, "none", "No Filter", PaperRefinedWhite},
	{FilterTypePaperSpiral, "paper-spiral", "Paper Spiral", PaperRefinedWhite},
	{FilterTypePaperPleat, "paper-pleat", "Paper Pleat", PaperRefinedWhite},
	{FilterTypeWoodTip, "wood-tip", "Wood Tip", TipWoodGrain},
	{FilterTypeCeramicTip, "ceramic-tip", "Ceramic Tip", TipCeramicWhite},
	{FilterTypeActivatedCharcoal, "activated-charcoal", "Activated Charcoal", TipCeramicWhite},
}

// ConeSizeOption carries the physical dimensions driving the geometry
// profile for each size.
type ConeSizeOption struct {
	Type           ConeSize
	ID             string
	Label          string
	LengthMM       float32
	TipDiameterMM  float32
	BaseDiameterMM float32
}

var ConeSizeOptions = []ConeSizeOption{
	{ConeSizeSlim, "slim-70", "Slim 70mm", 70, 5.5, 17},
	{ConeSizeClassic, "classic-84", "Classic 84mm", 84, 6.0, 20},
	{ConeSizeKing, "king-109", "King 109mm", 109, 6.5, 24},
	{ConeSizeGrand, "grand-140", "Grand 140mm", 140, 7.0, 28},
}

type LotOption struct {
	Type     LotSize
	ID       string
	Label    string
	Quantity int // 0 for the custom free-text lot
}

var LotOptions = []LotOption{
	{LotSizeSample, "sample-10", "Sample Pack (10)", 10},
	{LotSize100, "lot-100", "100 Units", 100},
	{LotSize500, "lot-500", "500 Units", 500},
	{LotSize1000, "lot-1000", "1,000 Units", 1000},
	{LotSize5000, "lot-5000", "5,000 Units", 5000},
	{LotSize10000, "lot-10000", "10,000 Units", 10000},
	{LotSizeCustom, "lot-custom", "Custom Quantity", 0},
}

func FindPaperOption(t PaperType) (PaperOption, bool) {
	for _, o := range PaperOptions {
		if o.Type == t {
			return o, true
		}
	}
	return PaperOption{}, false
}

func FindFilterOption(t FilterType) (FilterOption, bool) {
	for _, o := range FilterOptions {
		if o.Type == t {
			return o, true
		}
	}
	return FilterOption{}, false
}

func FindConeSizeOption(t ConeSize) (ConeSizeOption, bool) {
	for _, o := range ConeSizeOptions {
		if o.Type == t {
			return o, true
		}
	}
	return ConeSizeOption{}, false
}

func FindLotOption(t LotSize) (LotOption, bool) {
	for _, o := range LotOptions {
		if o.Type == t {
			return o, true
		}
	}
	return LotOption{}, false
}
