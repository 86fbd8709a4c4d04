package domain

// LayerID identifies one of the three extraction layers.
type LayerID string

const (
	LayerStructuredQuery LayerID = "structured_query"
	LayerGenerative      LayerID = "generative"
	LayerLocalPattern    LayerID = "local_pattern"
)

// LayerPriority is the default precedence order: Layer 1 > Layer 2 > Layer 3.
var LayerPriority = []LayerID{LayerStructuredQuery, LayerGenerative, LayerLocalPattern}

// PriorityIndex returns the position of a layer in the priority order.
// Unknown layers sort last.
func PriorityIndex(layer LayerID, priority []LayerID) int {
	for i, l := range priority {
		if l == layer {
			return i
		}
	}
	return len(priority)
}

// FieldKind describes how a raw field value is normalized.
type FieldKind string

const (
	KindMoney  FieldKind = "money"
	KindDate   FieldKind = "date"
	KindSSN    FieldKind = "ssn"
	KindEIN    FieldKind = "ein"
	KindString FieldKind = "string"
)

// TypeID identifies a supported document type.
type TypeID string

const (
	TypeWageStatement     TypeID = "wage_statement"
	TypeContractorPayment TypeID = "contractor_payment"
	TypePayStub           TypeID = "pay_stub"
	TypeReceipt           TypeID = "receipt"
	TypeBankStatement     TypeID = "bank_statement"
	TypeUnknown           TypeID = "unknown"
)

// LineItemCategory buckets a table row into earnings, deductions, or a plain item.
type LineItemCategory string

const (
	CategoryEarning   LineItemCategory = "earning"
	CategoryDeduction LineItemCategory = "deduction"
	CategoryItem      LineItemCategory = "item"
)

// FileType represents the allowed document file types.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}
