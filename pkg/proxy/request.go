package proxy

import (
	"fmt"
	"net/http"

	"github.com/Meijaisharma/PathshalaPro/pkg/resolver"
	"github.com/Meijaisharma/PathshalaPro/pkg/transfer"
)

// ParseMediaRequest builds the transfer request for a media route from the
// raw path identifier. The range window is filled in once the file size is
// known.
//
// Example usage:
//
//	req, err := ParseMediaRequest(r, mux.Vars(r)["id"], res)
//	if err != nil {
//	    containment.Contain(w, r, route, nil, err)
//	    return
//	}
func ParseMediaRequest(r *http.Request, rawID string, res *resolver.Resolver) (transfer.Request, error) {
	clientID, messageID, err := res.ParseAndResolve(rawID)
	if err != nil {
		return transfer.Request{}, fmt.Errorf("parse %q: %w", rawID, err)
	}
	return transfer.Request{
		ClientID:  clientID,
		MessageID: messageID,
		IsHead:    r.Method == http.MethodHead,
	}, nil
}
