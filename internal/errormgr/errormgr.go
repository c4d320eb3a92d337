package errormgr

import (
	"strings"
	"sync"

	"go.uber.org/multierr"
)

// ErrorMgr collects errors raised by concurrent tasks of one invocation.
type ErrorMgr interface {
	// store an error, nil is ignored
	StoreError(err error)
	// return all stored errors
	GetErrors() []error
	// combine stored errors, nil when none were stored
	Err() error
}

// _ErrorMgr is the implementation of ErrorMgr.
type _ErrorMgr struct {
	mu         sync.Mutex
	errorArray []error
}

// Error gives a provider error the context it happened in.
type Error struct {
	AccountId string
	Region    string
	Service   string
	Operation string
	Err       error
}

func (e Error) Error() string {
	var parts []string
	if e.AccountId != "" {
		parts = append(parts, "AccountId: "+e.AccountId)
	}
	if e.Region != "" {
		parts = append(parts, "Region: "+e.Region)
	}
	if e.Service != "" {
		parts = append(parts, "Service: "+e.Service)
	}
	if e.Operation != "" {
		parts = append(parts, "Operation: "+e.Operation)
	}
	if e.Err != nil {
		parts = append(parts, "Message: "+e.Err.Error())
	}
	if len(parts) == 0 {
		return "unknown error"
	}
	return strings.Join(parts, ", ")
}

func (e Error) Unwrap() error {
	return e.Err
}

// NewErrorMgr creates a new instance of ErrorMgr.
func NewErrorMgr() ErrorMgr {
	return &_ErrorMgr{
		errorArray: make([]error, 0),
	}
}

func (em *_ErrorMgr) StoreError(err error) {
	if err == nil {
		return
	}
	em.mu.Lock()
	defer em.mu.Unlock()
	em.errorArray = append(em.errorArray, err)
}

// GetErrors returns a copy of all stored errors.
func (em *_ErrorMgr) GetErrors() []error {
	em.mu.Lock()
	defer em.mu.Unlock()
	result := make([]error, len(em.errorArray))
	copy(result, em.errorArray)
	return result
}

func (em *_ErrorMgr) Err() error {
	return multierr.Combine(em.GetErrors()...)
}
