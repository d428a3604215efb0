// Package instagram provides a client for Instagram's web API.
//
// This package includes:
//   - A configurable HTTP client with rate limiting and typed errors
//   - Domain types with the Single/Carousel variant decided at ingestion
//   - Lazy iterators over paged post sequences (timeline and hashtag)
//   - Login and session-probe operations for the bot account
//
// Upstream failures are classified once, here, into stable categories:
//
//	profile, err := client.FetchProfile("username")
//	if err != nil {
//	    switch {
//	    case instagram.IsType(err, instagram.ErrorTypeNotFound):
//	        // 404
//	    case instagram.IsType(err, instagram.ErrorTypeRateLimited):
//	        // 429, message carries the upstream cooldown text
//	    }
//	}
package instagram
