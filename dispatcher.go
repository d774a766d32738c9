/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * IPP operation dispatcher
 */

package main

import (
	"fmt"
)

// supportedOps lists the operations the printer implements,
// in the order they are advertised
var supportedOps = []Op{
	OpPrintJob,
	OpValidateJob,
	OpCancelJob,
	OpGetJobAttributes,
	OpGetJobs,
	OpGetPrinterAttributes,
}

// Dispatcher maps decoded operations to job-store actions and
// builds response messages. It is safe for concurrent use
type Dispatcher struct {
	printer  *Printer
	store    *JobStore
	handlers map[Op]func(*Dispatcher, *Message, []byte) *Message
}

// NewDispatcher creates the Dispatcher
func NewDispatcher(printer *Printer, store *JobStore) *Dispatcher {
	return &Dispatcher{
		printer: printer,
		store:   store,
		handlers: map[Op]func(*Dispatcher, *Message, []byte) *Message{
			OpPrintJob:             (*Dispatcher).printJob,
			OpValidateJob:          (*Dispatcher).validateJob,
			OpCancelJob:            (*Dispatcher).cancelJob,
			OpGetJobAttributes:     (*Dispatcher).getJobAttributes,
			OpGetJobs:              (*Dispatcher).getJobs,
			OpGetPrinterAttributes: (*Dispatcher).getPrinterAttributes,
		},
	}
}

// Dispatch handles a single decoded request and returns the
// response message. It never fails: protocol problems become
// IPP status codes
func (d *Dispatcher) Dispatch(msg *Message, body []byte) *Message {
	op := Op(msg.Code)

	Log.Debug("> IPP: %s, version %s, request-id %d, %d bytes of data",
		op, msg.Version, msg.RequestID, len(body))

	if major := msg.Version.Major(); major < 1 || major > 2 {
		return d.respond(msg, StatusErrVersionNotSupported)
	}

	handler, ok := d.handlers[op]
	if !ok {
		// Not a fault: reject the operation, keep the
		// connection usable
		return d.respond(msg, StatusErrOpNotSupported)
	}

	rsp := handler(d, msg, body)

	Log.Debug("< IPP: %s, request-id %d", Status(rsp.Code), rsp.RequestID)

	return rsp
}

// respond creates a response message with the standard
// operation attributes
func (d *Dispatcher) respond(req *Message, status Status) *Message {
	version := req.Version
	if major := version.Major(); major < 1 || major > 2 {
		version = DefaultVersion
	}

	rsp := NewResponse(version, status, req.RequestID)

	group := rsp.AddGroup(TagOperationGroup)
	group.Add(MakeAttribute("attributes-charset", TagCharset, String("utf-8")))
	group.Add(MakeAttribute("attributes-natural-language", TagLanguage, String("en-us")))

	if status != StatusOk {
		group.Add(MakeAttribute("status-message", TagText, String(status.String())))
	}

	return rsp
}

// printJob implements Print-Job: create a job, append the
// document data and finalize, all in one request
func (d *Dispatcher) printJob(msg *Message, body []byte) *Message {
	format := d.documentFormat(msg)

	if !d.printer.FormatSupported(format) {
		return d.formatNotSupported(msg, format)
	}

	if len(body) == 0 {
		return d.respond(msg, StatusErrBadRequest)
	}

	name := msg.StrAttr(TagOperationGroup, "job-name")
	if name == "" {
		name = "untitled"
	}

	user := msg.StrAttr(TagOperationGroup, "requesting-user-name")
	if user == "" {
		user = "anonymous"
	}

	d.printer.StartJob()
	defer d.printer.EndJob()

	job := d.store.Create(name, user, format)

	Log.Info("JOB %d: %q from %q, %s, %d bytes",
		job.ID, name, user, format, len(body))

	if err := d.store.Append(job.ID, body); err != nil {
		return d.respond(msg, StatusErrInternal)
	}

	if err := d.store.Finalize(job.ID); err != nil {
		Log.Error("JOB %d: %s", job.ID, err)
		return d.respond(msg, StatusErrInternal)
	}

	job, _ = d.store.Get(job.ID)

	rsp := d.respond(msg, StatusOk)
	rsp.Groups = append(rsp.Groups, d.jobGroup(job, false))

	return rsp
}

// validateJob implements Validate-Job: capability checks only,
// no persistent state
func (d *Dispatcher) validateJob(msg *Message, body []byte) *Message {
	format := d.documentFormat(msg)

	if !d.printer.FormatSupported(format) {
		return d.formatNotSupported(msg, format)
	}

	return d.respond(msg, StatusOk)
}

// cancelJob implements Cancel-Job
func (d *Dispatcher) cancelJob(msg *Message, body []byte) *Message {
	id, ok := msg.IntAttr(TagOperationGroup, "job-id")
	if !ok {
		return d.respond(msg, StatusErrBadRequest)
	}

	switch err := d.store.Cancel(id); err {
	case nil:
		Log.Info("JOB %d: cancelled", id)
		return d.respond(msg, StatusOk)
	case ErrUnknownJob:
		return d.respond(msg, StatusErrNotFound)
	default:
		return d.respond(msg, StatusErrNotPossible)
	}
}

// getJobAttributes implements Get-Job-Attributes
func (d *Dispatcher) getJobAttributes(msg *Message, body []byte) *Message {
	id, ok := msg.IntAttr(TagOperationGroup, "job-id")
	if !ok {
		return d.respond(msg, StatusErrBadRequest)
	}

	job, err := d.store.Get(id)
	if err != nil {
		return d.respond(msg, StatusErrNotFound)
	}

	rsp := d.respond(msg, StatusOk)
	rsp.Groups = append(rsp.Groups, d.jobGroup(job, true))

	return rsp
}

// getJobs implements Get-Jobs. Per RFC 8011 the default
// "which-jobs" is "not-completed"
func (d *Dispatcher) getJobs(msg *Message, body []byte) *Message {
	which := msg.StrAttr(TagOperationGroup, "which-jobs")
	if which == "" {
		which = "not-completed"
	}

	limit, ok := msg.IntAttr(TagOperationGroup, "limit")
	if !ok || limit <= 0 {
		limit = -1
	}

	rsp := d.respond(msg, StatusOk)

	for _, job := range d.store.Jobs() {
		if which == "completed" && !job.State.Terminal() {
			continue
		}
		if which == "not-completed" && job.State.Terminal() {
			continue
		}

		rsp.Groups = append(rsp.Groups, d.jobGroup(job, true))

		if limit > 0 {
			limit--
			if limit == 0 {
				break
			}
		}
	}

	return rsp
}

// getPrinterAttributes implements Get-Printer-Attributes.
// Never mutates anything
func (d *Dispatcher) getPrinterAttributes(msg *Message, body []byte) *Message {
	requested := msg.StrsAttr(TagOperationGroup, "requested-attributes")

	rsp := d.respond(msg, StatusOk)
	rsp.Groups = append(rsp.Groups, d.printer.Attributes(requested))

	return rsp
}

// documentFormat extracts the "document-format" operation
// attribute, with the RFC 8011 default
func (d *Dispatcher) documentFormat(msg *Message) string {
	format := msg.StrAttr(TagOperationGroup, "document-format")
	if format == "" {
		format = "application/octet-stream"
	}

	return format
}

// formatNotSupported builds the document-format rejection,
// naming the offending attribute in the unsupported group
func (d *Dispatcher) formatNotSupported(msg *Message, format string) *Message {
	Log.Debug("! IPP: document format %q not supported", format)

	rsp := d.respond(msg, StatusErrFormatNotSupported)

	group := rsp.AddGroup(TagUnsupportedGroup)
	group.Add(MakeAttribute("document-format", TagMimeType, String(format)))

	return rsp
}

// jobGroup builds a job attributes group. The full set is
// returned by the job queries; Print-Job responses carry only
// the mandatory part
func (d *Dispatcher) jobGroup(job Job, full bool) Group {
	uri := fmt.Sprintf("%s/%d", d.printer.Info.URI(), job.ID)

	group := Group{Tag: TagJobGroup}
	group.Add(MakeAttribute("job-id", TagInteger, Integer(job.ID)))
	group.Add(MakeAttribute("job-uri", TagURI, String(uri)))
	group.Add(MakeAttribute("job-state", TagEnum, Integer(job.State)))
	group.Add(MakeAttribute("job-state-reasons", TagKeyword,
		String(jobStateReason(job.State))))

	if full {
		group.Add(MakeAttribute("job-name", TagName, String(job.Name)))
		group.Add(MakeAttribute("job-originating-user-name", TagName,
			String(job.User)))
		group.Add(MakeAttribute("document-format", TagMimeType,
			String(job.Format)))
		group.Add(MakeAttribute("job-k-octets", TagInteger,
			Integer((len(job.Data)+1023)/1024)))
		group.Add(MakeAttribute("time-at-creation", TagInteger,
			Integer(job.CreatedAt.Unix())))

		if !job.CompletedAt.IsZero() {
			group.Add(MakeAttribute("time-at-completed", TagInteger,
				Integer(job.CompletedAt.Unix())))
		}
	}

	return group
}

// jobStateReason maps the job state to its "job-state-reasons"
// keyword
func jobStateReason(state JobState) string {
	switch state {
	case JobProcessing:
		return "job-printing"
	case JobCancelled:
		return "job-canceled-by-user"
	case JobAborted:
		return "job-aborted-by-system"
	case JobCompleted:
		return "job-completed-successfully"
	}

	return "none"
}
