package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/noah-isme/purchase-request-api/internal/models"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
)

// EditorMode tells whether a form creates new requests or edits an existing one.
type EditorMode string

const (
	EditorModeAdd  EditorMode = "add"
	EditorModeEdit EditorMode = "edit"
)

type catalogLookup interface {
	Item(id string) (models.CatalogItem, bool)
}

var draftFieldByStructField = map[string]models.DraftField{
	"ItemName":    models.DraftFieldItem,
	"Quantity":    models.DraftFieldQuantity,
	"UnitMeasure": models.DraftFieldUnitMeasure,
	"RequestType": models.DraftFieldRequestType,
	"Purpose":     models.DraftFieldPurpose,
	"Status":      models.DraftFieldStatus,
	"SupplierID":  models.DraftFieldSupplier,
}

var draftMessages = map[models.DraftField]string{
	models.DraftFieldItem:        "Item name is required",
	models.DraftFieldQuantity:    "Quantity must be greater than 0",
	models.DraftFieldUnitMeasure: "Unit measure is required",
	models.DraftFieldRequestType: "Request type is required",
	models.DraftFieldPurpose:     "Request purpose is required",
	models.DraftFieldStatus:      "Request status is required",
	models.DraftFieldSupplier:    "Supplier selection is required",
}

// NewDraftValidator returns a validator that knows the draft row rule set.
func NewDraftValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// FormEditor is the in-progress state of an add or edit form. It always holds at least one
// row and every draft travels with its own error map.
type FormEditor struct {
	mode      EditorMode
	requestID int64
	entries   []models.DraftEntry
	catalog   catalogLookup
	validate  *validator.Validate
}

// NewFormEditor opens an add form with a single empty row.
func NewFormEditor(catalog catalogLookup, validate *validator.Validate) *FormEditor {
	if validate == nil {
		validate = NewDraftValidator()
	}
	return &FormEditor{
		mode:     EditorModeAdd,
		entries:  []models.DraftEntry{newEntry(models.NewDraftRow())},
		catalog:  catalog,
		validate: validate,
	}
}

// NewEditFormEditor opens a single-row edit form seeded with draft.
func NewEditFormEditor(requestID int64, draft models.DraftRow, catalog catalogLookup, validate *validator.Validate) *FormEditor {
	editor := NewFormEditor(catalog, validate)
	editor.mode = EditorModeEdit
	editor.requestID = requestID
	editor.entries[0] = newEntry(draft)
	return editor
}

// Mode reports whether the form creates or edits.
func (e *FormEditor) Mode() EditorMode { return e.mode }

// RequestID is the record being edited; zero in add mode.
func (e *FormEditor) RequestID() int64 { return e.requestID }

// Entries returns a deep copy of the rows and their errors.
func (e *FormEditor) Entries() []models.DraftEntry {
	out := make([]models.DraftEntry, len(e.entries))
	for i, entry := range e.entries {
		out[i] = models.DraftEntry{Draft: copyDraft(entry.Draft), Errors: copyErrors(entry.Errors)}
	}
	return out
}

// Drafts returns a copy of the drafts without their errors.
func (e *FormEditor) Drafts() []models.DraftRow {
	out := make([]models.DraftRow, len(e.entries))
	for i, entry := range e.entries {
		out[i] = copyDraft(entry.Draft)
	}
	return out
}

// SelectItem picks a catalog item for a row. Picking a new item discards any supplier chosen
// for the old one. Unknown items are ignored.
func (e *FormEditor) SelectItem(row int, itemID string) error {
	entry, err := e.entry(row)
	if err != nil {
		return err
	}
	item, ok := e.catalog.Item(itemID)
	if !ok {
		return nil
	}
	entry.Draft.ItemID = item.ID
	entry.Draft.ItemName = item.Name
	entry.Draft.UnitMeasure = item.UnitMeasure
	entry.Draft.SupplierID = ""
	entry.Draft.Supplier = nil
	delete(entry.Errors, models.DraftFieldItem)
	return nil
}

// SelectSupplier copies the terms of one of the row item's suppliers into the row.
// Suppliers of other items, or rows without an item, are ignored.
func (e *FormEditor) SelectSupplier(row int, supplierID string) error {
	entry, err := e.entry(row)
	if err != nil {
		return err
	}
	item, ok := e.catalog.Item(entry.Draft.ItemID)
	if !ok {
		return nil
	}
	supplier, ok := item.Supplier(supplierID)
	if !ok {
		return nil
	}
	entry.Draft.SupplierID = supplier.ID
	entry.Draft.Supplier = snapshotOf(supplier)
	delete(entry.Errors, models.DraftFieldSupplier)
	return nil
}

// EditField overwrites one plain field of a row and clears that field's error.
func (e *FormEditor) EditField(row int, field models.DraftField, value string) error {
	entry, err := e.entry(row)
	if err != nil {
		return err
	}
	switch field {
	case models.DraftFieldQuantity:
		qty, convErr := strconv.Atoi(strings.TrimSpace(value))
		if convErr != nil {
			return appErrors.Clone(appErrors.ErrValidation, "quantity must be a whole number")
		}
		entry.Draft.Quantity = qty
	case models.DraftFieldUnitMeasure:
		entry.Draft.UnitMeasure = value
	case models.DraftFieldRequestType:
		entry.Draft.RequestType = models.RequestType(value)
	case models.DraftFieldPurpose:
		entry.Draft.Purpose = value
	case models.DraftFieldStatus:
		status := models.RequestStatus(value)
		if value != "" && !status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", value))
		}
		entry.Draft.Status = status
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q cannot be edited directly", field))
	}
	delete(entry.Errors, field)
	return nil
}

// AddRow appends an empty row. Edit forms hold exactly one row.
func (e *FormEditor) AddRow() error {
	if e.mode != EditorModeAdd {
		return appErrors.Clone(appErrors.ErrValidation, "rows can only be added while creating requests")
	}
	e.entries = append(e.entries, newEntry(models.NewDraftRow()))
	return nil
}

// CanRemove reports whether a row may be removed.
func (e *FormEditor) CanRemove() bool {
	return len(e.entries) > 1
}

// RemoveRow drops a row together with its errors.
func (e *FormEditor) RemoveRow(row int) error {
	if _, err := e.entry(row); err != nil {
		return err
	}
	if !e.CanRemove() {
		return appErrors.Clone(appErrors.ErrValidation, "at least one row is required")
	}
	e.entries = append(e.entries[:row], e.entries[row+1:]...)
	return nil
}

// ValidateAll recomputes every error map and reports whether all rows are valid.
func (e *FormEditor) ValidateAll() bool {
	valid := true
	for i := range e.entries {
		errs := e.validateDraft(e.entries[i].Draft)
		e.entries[i].Errors = errs
		if len(errs) > 0 {
			valid = false
		}
	}
	return valid
}

// RowErrors returns the current errors per row, omitting clean rows.
func (e *FormEditor) RowErrors() map[int]models.FieldErrors {
	out := make(map[int]models.FieldErrors)
	for i, entry := range e.entries {
		if len(entry.Errors) > 0 {
			out[i] = copyErrors(entry.Errors)
		}
	}
	return out
}

func (e *FormEditor) validateDraft(draft models.DraftRow) models.FieldErrors {
	errs := models.FieldErrors{}
	err := e.validate.Struct(draft)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs[models.DraftFieldItem] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		field, ok := draftFieldByStructField[fe.StructField()]
		if !ok {
			continue
		}
		if _, seen := errs[field]; seen {
			continue
		}
		msg := draftMessages[field]
		if field == models.DraftFieldRequestType && fe.Tag() == "oneof" {
			msg = "Request type must be normal or urgent"
		}
		errs[field] = msg
	}
	return errs
}

func (e *FormEditor) entry(row int) (*models.DraftEntry, error) {
	if row < 0 || row >= len(e.entries) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("row %d does not exist", row))
	}
	return &e.entries[row], nil
}

func newEntry(draft models.DraftRow) models.DraftEntry {
	return models.DraftEntry{Draft: draft, Errors: models.FieldErrors{}}
}

func snapshotOf(s models.Supplier) *models.SupplierSnapshot {
	return &models.SupplierSnapshot{
		SupplierName:    s.Name,
		UnitPrice:       s.UnitPrice,
		AvgDeliveryTime: s.AvgDeliveryTime,
		LastUpdated:     s.LastUpdated,
		Notes:           s.Notes,
	}
}

func copyDraft(d models.DraftRow) models.DraftRow {
	if d.Supplier != nil {
		snap := *d.Supplier
		d.Supplier = &snap
	}
	return d
}

func copyErrors(errs models.FieldErrors) models.FieldErrors {
	out := make(models.FieldErrors, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}
