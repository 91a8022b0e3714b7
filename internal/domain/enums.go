package domain

// DocumentRole identifies which side of a comparison a document plays.
type DocumentRole string

const (
	RoleOA         DocumentRole = "oa"
	RolePO         DocumentRole = "po"
	RoleCustomerPO DocumentRole = "customer_po"
	RoleDatasheet  DocumentRole = "datasheet"
)

// Label returns the short human label used in reports and errors.
func (r DocumentRole) Label() string {
	switch r {
	case RoleOA:
		return "OA"
	case RolePO:
		return "PO"
	case RoleCustomerPO:
		return "Customer PO"
	case RoleDatasheet:
		return "Datasheet"
	default:
		return string(r)
	}
}

// Format is the container type of an input document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// AllowedExtensions maps file extensions (without dot) to Format.
var AllowedExtensions = map[string]Format{
	"pdf":  FormatPDF,
	"xlsx": FormatXLSX,
	"xlsm": FormatXLSX,
	"csv":  FormatCSV,
	"txt":  FormatText,
}

// AllowedFormats lists the formats each role may be supplied in.
var AllowedFormats = map[DocumentRole][]Format{
	RoleOA:         {FormatPDF, FormatText},
	RolePO:         {FormatPDF, FormatXLSX, FormatCSV, FormatText},
	RoleCustomerPO: {FormatPDF, FormatXLSX, FormatCSV, FormatText},
	RoleDatasheet:  {FormatPDF, FormatText},
}

// FieldRole is a semantic role a text line can carry.
type FieldRole string

const (
	FieldLine          FieldRole = "line"
	FieldModel         FieldRole = "model"
	FieldTag           FieldRole = "tag"
	FieldQuantity      FieldRole = "quantity"
	FieldUnitPrice     FieldRole = "unit_price"
	FieldExtendedPrice FieldRole = "extended_price"
	FieldShipDate      FieldRole = "ship_date"
	FieldCalibration   FieldRole = "calibration"
	FieldPONumber      FieldRole = "po_number"
	FieldFinalTotal    FieldRole = "final_total"
	FieldTariff        FieldRole = "tariff"
)

// AllFieldRoles lists every role in a stable order.
var AllFieldRoles = []FieldRole{
	FieldLine,
	FieldModel,
	FieldTag,
	FieldQuantity,
	FieldUnitPrice,
	FieldExtendedPrice,
	FieldShipDate,
	FieldCalibration,
	FieldPONumber,
	FieldFinalTotal,
	FieldTariff,
}

// FieldNames maps roles to the names used in findings.
var FieldNames = map[FieldRole]string{
	FieldLine:          "line number",
	FieldModel:         "model number",
	FieldTag:           "tag",
	FieldQuantity:      "quantity",
	FieldUnitPrice:     "unit price",
	FieldExtendedPrice: "extended price",
	FieldShipDate:      "ship date",
	FieldCalibration:   "calibration",
	FieldPONumber:      "PO number",
	FieldFinalTotal:    "order total",
	FieldTariff:        "tariff",
}

// Classification is the outcome of comparing one field.
type Classification string

const (
	ClassMatch     Classification = "match"
	ClassMismatch  Classification = "mismatch"
	ClassMissingOA Classification = "missing-in-OA"
	ClassMissingPO Classification = "missing-in-PO"
)

// TotalVerdict is the document-level total price outcome.
type TotalVerdict string

const (
	TotalMatch           TotalVerdict = "match"
	TotalTariffExplained TotalVerdict = "tariff-explained"
	TotalUnexplained     TotalVerdict = "unexplained-difference"
	TotalNotCompared     TotalVerdict = "not-compared"
)

// Differs reports whether the verdict describes a total price difference.
func (v TotalVerdict) Differs() bool {
	return v == TotalTariffExplained || v == TotalUnexplained
}

// WarningKind categorizes non-fatal data quality problems.
type WarningKind string

const (
	WarnNoRecognizedFields WarningKind = "no_recognized_fields"
	WarnAmbiguousAlignment WarningKind = "ambiguous_alignment"
	WarnBackendUnavailable WarningKind = "backend_unavailable"
	WarnTruncation         WarningKind = "truncation"
	WarnConflictingValue   WarningKind = "conflicting_value"
	WarnUnparsedValue      WarningKind = "unparsed_value"
)

// Closing status sentences.
const (
	StatusNoDiscrepancies      = "No discrepancies found."
	StatusNoOtherDiscrepancies = "No other discrepancies found."
	StatusNothingToCompare     = "Nothing to compare: no recognized fields were found."
)
