// Package lumen provides named, leveled, colorized loggers.
//
// Loggers are named singletons: asking an Environment for a logger name
// that is already alive returns that logger, and options given on the
// second call are ignored. The registry only holds weak references, so a
// logger nobody uses any more is garbage collected and its name freed.
//
// Each logger renders records through a message template and writes them
// to a set of streams. Interactive streams, such as stdout attached to a
// terminal, receive colorized lines; files and other writers receive the
// same lines without escape codes.
//
// Basic Usage:
//
//	log, err := lumen.New("svc", lumen.WithPath("svc.log"), lumen.WithLevel(lumen.LevelDebug))
//	if err != nil {
//		panic(err)
//	}
//	defer log.Close()
//
//	log.Info("listening on ", addr)
//	log.Debugf("config: %+v", cfg)
//
// produces lines such as
//
//	svc          2024-03-09 14:05:07 | INFO     | main:main:42  - listening on :8080
//
// Filtering:
//
// A message is written when its level is at least the logger level and its
// module is enabled. The module of a message is the import path of the
// package that issued it. Enable and Disable act on an environment-wide
// table; a module inherits the state of its nearest configured prefix, so
// disabling "github.com/acme/app" silences "github.com/acme/app/db" too.
//
//	env := lumen.Default()
//	env.Disable("github.com/acme/app/db")
//	env.Disable()            // everything
//	env.Enable("main")       // except the main package
//
// Workers:
//
// Records logged outside the main goroutine, or in a process started with
// LUMEN_WORKER set, are buffered in a private scratch file per worker.
// Close (or Flush) replays them into the streams under a lock shared by
// all loggers and by processes using the same temp dir, so the lines of one
// worker stay together and in order.
//
//	env.Go("fetcher", func() {
//		log.Info("fetching")     // buffered
//	})
//
// Errors:
//
// Logging never fails because a stream broke. Such failures are handed to
// an ErrorHandler, by default a trace dump on stderr framed by
// "[Start Trace]" and "[End Trace]" banners. Leveled calls only return
// ErrNoStreams, when the logger has no stream left, and ErrLoggerClosed.
//
// Configuration:
//
// The Default environment reads LUMEN_LEVEL, LUMEN_FORMAT,
// LUMEN_TIME_FORMAT, LUMEN_TEMP_DIR, LUMEN_FORCE_COLORIZE and
// LUMEN_BUFFERING. LoadConfig additionally layers a YAML file.
package lumen
