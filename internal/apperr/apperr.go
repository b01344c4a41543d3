// Package apperr carries operation failures as (code, http status, details) so the
// transport layer can translate them uniformly.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindInternal          Kind = "internal"
)

const (
	CodeBarcodeFormatInvalid    = "BARCODE_FORMAT_INVALID"
	CodeBarcodeKindUnknown      = "BARCODE_KIND_UNKNOWN"
	CodeBarcodeNotInPool        = "BARCODE_NOT_IN_POOL"
	CodeBarcodeKindMismatch     = "BARCODE_KIND_MISMATCH"
	CodeBarcodeVoid             = "BARCODE_VOID"
	CodeBarcodeAlreadyUsed      = "BARCODE_ALREADY_USED"
	CodeBarcodeStatusInvalid    = "BARCODE_STATUS_INVALID"
	CodeBarcodeConflict         = "BARCODE_CONFLICT"
	CodeBarcodeRequired         = "BARCODE_REQUIRED"
	CodeDimensionsRequired      = "DIMENSIONS_REQUIRED"
	CodeWeightRequired          = "WEIGHT_REQUIRED"
	CodeLengthRequired          = "LENGTH_REQUIRED"
	CodeInvalidStockUnit        = "INVALID_STOCK_UNIT"
	CodeMasterRequired          = "MASTER_REQUIRED"
	CodeConsumeGtStock          = "CONSUME_GT_STOCK"
	CodeNoStock                 = "NO_STOCK"
	CodeFireGtConsumed          = "FIRE_GT_CONSUMED"
	CodeInvalidReturnQty        = "INVALID_RETURN_QTY"
	CodeInvalidConsumeQty       = "INVALID_CONSUME_QTY"
	CodeInvalidFireQty          = "INVALID_FIRE_QTY"
	CodeComponentNotFound       = "COMPONENT_NOT_FOUND"
	CodeProductNotFound         = "PRODUCT_NOT_FOUND"
	CodeLinkNotFound            = "LINK_NOT_FOUND"
	CodeMasterNotFound          = "MASTER_NOT_FOUND"
	CodeWarehouseNotFound       = "WAREHOUSE_NOT_FOUND"
	CodeLocationNotFound        = "LOCATION_NOT_FOUND"
	CodeInvalidScope            = "INVALID_SCOPE"
	CodeInvalidTarget           = "INVALID_TARGET"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeDuplicateItem           = "DUPLICATE_ITEM"
	CodeValidation              = "VALIDATION_ERROR"
	CodeInternal                = "INTERNAL_ERROR"
)

type Details map[string]any

type Error struct {
	Kind    Kind    `json:"-"`
	Code    string  `json:"error"`
	Status  int     `json:"-"`
	Message string  `json:"message"`
	Details Details `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// With: details'e alan ekler (kopya döner)
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Details = Details{}
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

func newErr(kind Kind, status int, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Status: status, Message: msg}
}

func Validation(code, msg string) *Error {
	return newErr(KindValidation, fiber.StatusBadRequest, code, msg)
}

func Conflict(code, msg string) *Error {
	return newErr(KindConflict, fiber.StatusConflict, code, msg)
}

func NotFound(code, msg string) *Error {
	return newErr(KindNotFound, fiber.StatusNotFound, code, msg)
}

func InsufficientStock(code, msg string) *Error {
	return newErr(KindInsufficientStock, fiber.StatusConflict, code, msg)
}

// Internal: beklenmeyen depolama hatası; cause loglanır ama istemciye gösterilmez
func Internal(cause error) *Error {
	e := newErr(KindInternal, fiber.StatusInternalServerError, CodeInternal, "Beklenmeyen sunucu hatası")
	e.cause = cause
	return e
}

// From: herhangi bir hatayı *Error'a çevirir
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// HasCode: testlerde ve çağıranlarda kod kontrolü için
func HasCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
