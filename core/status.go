package core

// Status is the closed enumeration of operation outcomes shared by every
// primitive in the abstraction layer. Zero means success; every negative
// value is a distinct failure kind and is never reused across unrelated
// meanings.
//
// Status implements the error interface so that operations can return a
// plain error that callers match with errors.Is:
//
//	if err := q.Send(item, osal.NoWait); errors.Is(err, core.ErrQueueFull) {
//		// back off
//	}
//
// Successful operations return a nil error, never StatusOK wrapped in an
// error value.
type Status int32

const (
	// StatusOK is the zero success value. It is never returned as an error.
	StatusOK Status = 0

	// ErrFailure is the generic "failed execution" outcome used when no
	// more specific code applies (resource exhaustion during create, host
	// runtime failures).
	ErrFailure Status = -1

	// ErrInvalidPointer reports a nil handle, nil buffer, or nil callback
	// argument. Always detected before any state mutation.
	ErrInvalidPointer Status = -2

	// ErrAddressMisaligned reports a misaligned memory address.
	ErrAddressMisaligned Status = -3

	// ErrTimeout is the generic timed-out outcome for operations that are
	// not queue or semaphore waits.
	ErrTimeout Status = -4

	// ErrInvalidIntNum reports an invalid interrupt number.
	ErrInvalidIntNum Status = -5

	// ErrSemFailure reports a failed semaphore or mutex operation,
	// including a give past the ceiling and a release by a non-owner.
	ErrSemFailure Status = -6

	// ErrSemTimeout reports that a semaphore take did not complete within
	// the requested timeout (including a zero-timeout take on an
	// unavailable semaphore).
	ErrSemTimeout Status = -7

	// ErrQueueEmpty reports a zero-timeout receive on an empty queue.
	ErrQueueEmpty Status = -8

	// ErrQueueFull reports a zero-timeout send on a full queue.
	ErrQueueFull Status = -9

	// ErrQueueTimeout reports that a timed queue send or receive reached
	// its deadline. Never confused with ErrQueueFull / ErrQueueEmpty.
	ErrQueueTimeout Status = -10

	// ErrQueueInvalidSize reports a queue created with zero capacity, zero
	// item size, or a capacity*itemSize product that overflows.
	ErrQueueInvalidSize Status = -11

	// ErrQueueID reports an invalid queue identifier.
	ErrQueueID Status = -12

	// ErrNameTooLong reports a primitive name longer than MaxNameLen.
	ErrNameTooLong Status = -13

	// ErrNoFreeIDs reports that no free resource identifiers remain.
	ErrNoFreeIDs Status = -14

	// ErrNameTaken reports a resource name that is already in use.
	ErrNameTaken Status = -15

	// ErrInvalidID reports an operation on a handle that has been deleted
	// or is otherwise no longer valid, including waiters forcibly woken by
	// Delete.
	ErrInvalidID Status = -16

	// ErrNameNotFound reports a lookup of an unknown resource name.
	ErrNameNotFound Status = -17

	// ErrSemNotFull reports a semaphore that is not at its ceiling.
	ErrSemNotFull Status = -18

	// ErrInvalidPriority reports a task priority outside the accepted
	// range of the backing runtime.
	ErrInvalidPriority Status = -19

	// ErrInvalidSemValue reports an invalid semaphore initial value, such
	// as a binary semaphore created with an initial value outside {0,1} or
	// a counting semaphore whose initial value exceeds its ceiling.
	ErrInvalidSemValue Status = -20

	// -21 to -26 are reserved.

	// ErrFile reports a file operation error.
	ErrFile Status = -27

	// ErrNotImplemented reports an entry point that exists in the contract
	// surface but is not implemented by this backend. All FromISR entry
	// points on the threads backend report this.
	ErrNotImplemented Status = -28

	// ErrTimerInvalidArgs reports invalid timer arguments (zero period,
	// nil callback).
	ErrTimerInvalidArgs Status = -29

	// ErrTimerID reports an invalid timer identifier.
	ErrTimerID Status = -30

	// ErrTimerUnavailable reports that the timer resource is unavailable.
	ErrTimerUnavailable Status = -31

	// ErrTimerInternal reports an internal timer engine error.
	ErrTimerInternal Status = -32

	// ErrObjectInUse reports a resource that is currently in use.
	ErrObjectInUse Status = -33

	// ErrBadAddress reports an invalid memory address.
	ErrBadAddress Status = -34

	// ErrIncorrectObjState reports an object in the wrong state for the
	// requested operation.
	ErrIncorrectObjState Status = -35

	// ErrIncorrectObjType reports an object of the wrong type.
	ErrIncorrectObjType Status = -36

	// ErrStreamDisconnected reports a lost stream connection.
	ErrStreamDisconnected Status = -37

	// ErrOperationNotSupported reports an operation that this object can
	// never perform, as opposed to ErrNotImplemented which marks a backend
	// gap in the shared contract surface.
	ErrOperationNotSupported Status = -38

	// -39 is reserved.

	// ErrInvalidSize reports an invalid size parameter, such as an item
	// buffer that does not match the queue's item size or a static block
	// that is too small.
	ErrInvalidSize Status = -40

	// ErrOutputTooLarge reports an output exceeding its size limit.
	ErrOutputTooLarge Status = -41

	// ErrInvalidArgument reports an invalid argument value not covered by
	// a more specific code.
	ErrInvalidArgument Status = -42

	// ErrTryAgain reports a temporary failure; the operation may be
	// retried by the caller.
	ErrTryAgain Status = -43

	// ErrEmptySet reports a lookup that returned no results.
	ErrEmptySet Status = -44
)

var statusNames = map[Status]string{
	StatusOK:                 "success",
	ErrFailure:               "failure",
	ErrInvalidPointer:        "invalid pointer",
	ErrAddressMisaligned:     "address misaligned",
	ErrTimeout:               "timeout",
	ErrInvalidIntNum:         "invalid interrupt number",
	ErrSemFailure:            "semaphore failure",
	ErrSemTimeout:            "semaphore timeout",
	ErrQueueEmpty:            "queue empty",
	ErrQueueFull:             "queue full",
	ErrQueueTimeout:          "queue timeout",
	ErrQueueInvalidSize:      "invalid queue size",
	ErrQueueID:               "invalid queue id",
	ErrNameTooLong:           "name too long",
	ErrNoFreeIDs:             "no free ids",
	ErrNameTaken:             "name taken",
	ErrInvalidID:             "invalid id",
	ErrNameNotFound:          "name not found",
	ErrSemNotFull:            "semaphore not full",
	ErrInvalidPriority:       "invalid priority",
	ErrInvalidSemValue:       "invalid semaphore value",
	ErrFile:                  "file error",
	ErrNotImplemented:        "not implemented",
	ErrTimerInvalidArgs:      "invalid timer arguments",
	ErrTimerID:               "invalid timer id",
	ErrTimerUnavailable:      "timer unavailable",
	ErrTimerInternal:         "timer internal error",
	ErrObjectInUse:           "object in use",
	ErrBadAddress:            "bad address",
	ErrIncorrectObjState:     "incorrect object state",
	ErrIncorrectObjType:      "incorrect object type",
	ErrStreamDisconnected:    "stream disconnected",
	ErrOperationNotSupported: "operation not supported",
	ErrInvalidSize:           "invalid size",
	ErrOutputTooLarge:        "output too large",
	ErrInvalidArgument:       "invalid argument",
	ErrTryAgain:              "try again",
	ErrEmptySet:              "empty set",
}

// String returns the human-readable name of the status, or "unknown error"
// for values outside the enumeration.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown error"
}

// Error implements the error interface.
func (s Status) Error() string {
	return "osal: " + s.String()
}

// Code returns the raw integer value of the status.
func (s Status) Code() int32 {
	return int32(s)
}

// Ok reports whether the status is the success value.
func (s Status) Ok() bool {
	return s == StatusOK
}
