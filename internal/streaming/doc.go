/*
Package streaming copies asset bytes to HTTP clients with timeout protection.

A slow or vanished client can otherwise pin a file descriptor and a
goroutine for as long as the TCP connection survives. Writer wraps the
response with:

  - a per-write timeout (WriteTimeout)
  - an idle timeout between successful writes (IdleTimeout)
  - optional chunking with a flush after each chunk (ChunkSize)
  - early exit when the request context is done

When the response supports write deadlines (http.ResponseController), each
write and flush runs on the handler goroutine under a connection deadline,
so nothing touches the ResponseWriter after Copy returns. Other writers
fall back to a goroutine per write, and Close waits for it.

Usage:

	asset, err := locator.Open(hash)
	if err != nil {
		// 404
	}
	defer asset.Close()

	n, err := streaming.Copy(r.Context(), w, asset, streaming.DefaultConfig())
	if err != nil && !errors.Is(err, streaming.ErrClientGone) {
		logging.Warn("download aborted after %d bytes: %v", n, err)
	}

Errors:

  - ErrWriteTimeout: a single write exceeded WriteTimeout
  - ErrIdleTimeout: no progress within IdleTimeout
  - ErrClientGone: the request context was canceled
  - ErrStreamClosed: Write called after Close
*/
package streaming
