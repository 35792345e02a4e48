package transformer

import "fmt"

// MissingJoinKeyError reports a join key column absent from one side.
type MissingJoinKeyError struct {
	Partition string
	Key       string
}

func (e *MissingJoinKeyError) Error() string {
	return fmt.Sprintf("transformer: join key %q missing from partition %s", e.Key, e.Partition)
}
