package fault

import (
	"sync"
)

// DataAccessError is a database failure with a numeric error code. It is
// classified as KindDataAccess.
type DataAccessError struct {
	Code      int
	Server    string
	Operation string
	Msg       string
	Err       error
}

func (e *DataAccessError) Error() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// InteropError is a failure reported by foreign code as a status code. It is
// classified as KindInterop.
type InteropError struct {
	Code uint32
	Msg  string
	Err  error
}

func (e *InteropError) Error() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *InteropError) Unwrap() error { return e.Err }

// DataCarrier is implemented by errors that carry diagnostic key/value data.
type DataCarrier interface {
	FaultData() map[string]string
}

type withData struct {
	err  error
	data map[string]string
}

// WithData returns err annotated with key/value pairs that end up in the
// Data of the node built for err. The returned error has the same message as
// err and unwraps to it. Annotating an error that already carries data merges
// the maps, later keys winning.
func WithData(err error, kv map[string]string) error {
	if err == nil {
		return nil
	}
	data := make(map[string]string, len(kv))
	if w, ok := err.(*withData); ok {
		for k, v := range w.data {
			data[k] = v
		}
		err = w.err
	}
	for k, v := range kv {
		data[k] = v
	}
	return &withData{err: err, data: data}
}

func (w *withData) Error() string { return w.err.Error() }

func (w *withData) Unwrap() error { return w.err }

func (w *withData) FaultData() map[string]string { return w.data }

// Classification is what a Classifier reports for an error it recognizes.
type Classification struct {
	Kind       Kind
	DataAccess *DataAccessInfo
	Interop    *InteropInfo
}

// Classifier inspects a single error layer (not its chain) and reports
// whether it recognizes it.
type Classifier func(err error) (Classification, bool)

var (
	classifiersMu sync.RWMutex
	classifiers   []Classifier
)

// RegisterClassifier adds a classifier consulted before the built-in ones.
// Driver-specific packages call it from init, the way database/sql drivers
// register themselves.
func RegisterClassifier(c Classifier) {
	if c == nil {
		return
	}
	classifiersMu.Lock()
	defer classifiersMu.Unlock()
	classifiers = append(classifiers, c)
}

func registeredClassifiers() []Classifier {
	classifiersMu.RLock()
	defer classifiersMu.RUnlock()
	out := make([]Classifier, len(classifiers))
	copy(out, classifiers)
	return out
}
