// Package sqlitefault classifies github.com/ncruces/go-sqlite3 errors as
// data-access faults. Import it for its side effect:
//
//	import _ "github.com/wayneeseguin/logspool/pkg/fault/sqlitefault"
//
// The extended result code becomes the node's error number and the failing
// statement, when sqlite reports one, becomes its operation. SQLite is an
// embedded engine, so the server field is always left empty.
package sqlitefault

import (
	"github.com/ncruces/go-sqlite3"
	"github.com/wayneeseguin/logspool/pkg/fault"
)

func init() {
	fault.RegisterClassifier(Classify)
}

// Classify reports a data-access classification for *sqlite3.Error values.
func Classify(err error) (fault.Classification, bool) {
	serr, ok := err.(*sqlite3.Error)
	if !ok || serr == nil {
		return fault.Classification{}, false
	}
	return fault.Classification{
		Kind: fault.KindDataAccess,
		DataAccess: &fault.DataAccessInfo{
			Code:      int(serr.ExtendedCode()),
			Operation: serr.SQL(),
		},
	}, true
}
