// Package logger builds the kiosk's *slog.Logger and provides attribute helpers
// so every component names its log fields the same way.
//
// New applies functional options, selects a text or JSON handler and wraps it
// with LogHandlerDecorator, which runs registered ContextExtractor callbacks on
// every record. The kiosk uses this to stamp the outbound request id of the
// current operation onto each line.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "nfckiosk"),
//	    logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//
//	log.InfoContext(ctx, "session started",
//	    logger.SessionID(42),
//	    logger.Purpose("Morning Lecture"),
//	)
//
// CardUID masks everything but the last four characters of a card identifier;
// Error returns an empty attribute for a nil error, so it can be passed
// unconditionally.
package logger
