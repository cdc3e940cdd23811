// Package requestid generates and propagates request correlation identifiers.
//
// The kiosk stamps every operation (login, start, end, scan) with one id:
// Ensure stores it in the context, the API client sends it as the X-Request-ID
// header and LoggerExtractor adds it to every log record written with that
// context. Middleware does the receiving side for the development fake service.
//
//	ctx, id := requestid.Ensure(ctx)
//	log.InfoContext(ctx, "scan submitted") // carries request_id=id
package requestid
