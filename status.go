/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * IPP operation and status codes
 */

package main

import (
	"fmt"
)

// Op represents an IPP operation code
type Op uint16

// Operation codes, RFC 8011
const (
	OpPrintJob             Op = 0x0002
	OpPrintURI             Op = 0x0003
	OpValidateJob          Op = 0x0004
	OpCreateJob            Op = 0x0005
	OpSendDocument         Op = 0x0006
	OpCancelJob            Op = 0x0008
	OpGetJobAttributes     Op = 0x0009
	OpGetJobs              Op = 0x000a
	OpGetPrinterAttributes Op = 0x000b
)

// String returns the operation name
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}

	return fmt.Sprintf("0x%4.4x", uint16(op))
}

var opNames = map[Op]string{
	OpPrintJob:             "Print-Job",
	OpPrintURI:             "Print-URI",
	OpValidateJob:          "Validate-Job",
	OpCreateJob:            "Create-Job",
	OpSendDocument:         "Send-Document",
	OpCancelJob:            "Cancel-Job",
	OpGetJobAttributes:     "Get-Job-Attributes",
	OpGetJobs:              "Get-Jobs",
	OpGetPrinterAttributes: "Get-Printer-Attributes",
}

// Status represents an IPP status code
type Status uint16

// Status codes, RFC 8011
const (
	StatusOk                     Status = 0x0000
	StatusOkIgnoredAttrs         Status = 0x0001
	StatusOkConflictingAttrs     Status = 0x0002
	StatusErrBadRequest          Status = 0x0400
	StatusErrForbidden           Status = 0x0401
	StatusErrNotAuthenticated    Status = 0x0402
	StatusErrNotAuthorized       Status = 0x0403
	StatusErrNotPossible         Status = 0x0404
	StatusErrTimeout             Status = 0x0405
	StatusErrNotFound            Status = 0x0406
	StatusErrGone                Status = 0x0407
	StatusErrEntityTooLarge      Status = 0x0408
	StatusErrValueTooLong        Status = 0x0409
	StatusErrFormatNotSupported  Status = 0x040a
	StatusErrAttrsNotSupported   Status = 0x040b
	StatusErrInternal            Status = 0x0500
	StatusErrOpNotSupported      Status = 0x0501
	StatusErrServiceUnavailable  Status = 0x0502
	StatusErrVersionNotSupported Status = 0x0503
	StatusErrNotAcceptingJobs    Status = 0x0506
	StatusErrBusy                Status = 0x0507
)

// String returns the status name
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("0x%4.4x", uint16(s))
}

var statusNames = map[Status]string{
	StatusOk:                     "successful-ok",
	StatusOkIgnoredAttrs:         "successful-ok-ignored-or-substituted-attributes",
	StatusOkConflictingAttrs:     "successful-ok-conflicting-attributes",
	StatusErrBadRequest:          "client-error-bad-request",
	StatusErrForbidden:           "client-error-forbidden",
	StatusErrNotAuthenticated:    "client-error-not-authenticated",
	StatusErrNotAuthorized:       "client-error-not-authorized",
	StatusErrNotPossible:         "client-error-not-possible",
	StatusErrTimeout:             "client-error-timeout",
	StatusErrNotFound:            "client-error-not-found",
	StatusErrGone:                "client-error-gone",
	StatusErrEntityTooLarge:      "client-error-request-entity-too-large",
	StatusErrValueTooLong:        "client-error-request-value-too-long",
	StatusErrFormatNotSupported:  "client-error-document-format-not-supported",
	StatusErrAttrsNotSupported:   "client-error-attributes-or-values-not-supported",
	StatusErrInternal:            "server-error-internal-error",
	StatusErrOpNotSupported:      "server-error-operation-not-supported",
	StatusErrServiceUnavailable:  "server-error-service-unavailable",
	StatusErrVersionNotSupported: "server-error-version-not-supported",
	StatusErrNotAcceptingJobs:    "server-error-not-accepting-jobs",
	StatusErrBusy:                "server-error-busy",
}
