package kubectl

import (
	"fmt"

	"k8s.io/apimachinery/pkg/types"
)

// MergeStrategy selects the patch algorithm passed to kubectl --type.
type MergeStrategy string

const (
	MergeStrategyStrategic MergeStrategy = "strategic"
	MergeStrategyJSON      MergeStrategy = "json"
	MergeStrategyMerge     MergeStrategy = "merge"
)

// PatchType maps the strategy to its API patch type.
func (s MergeStrategy) PatchType() (types.PatchType, error) {
	switch s {
	case MergeStrategyStrategic:
		return types.StrategicMergePatchType, nil
	case MergeStrategyJSON:
		return types.JSONPatchType, nil
	case MergeStrategyMerge:
		return types.MergePatchType, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMergeStrategy, string(s))
}

// PatchOptions configures a patch operation.
type PatchOptions struct {
	// Strategy is passed through verbatim; it is never defaulted.
	Strategy MergeStrategy
	// Record appends --record to the command.
	Record bool
}

// Validate checks the strategy.
func (o PatchOptions) Validate() error {
	_, err := o.Strategy.PatchType()
	return err
}

// Cascade is the dependent-deletion mode for kubectl delete --cascade.
type Cascade string

const (
	CascadeBackground Cascade = "background"
	CascadeForeground Cascade = "foreground"
	CascadeOrphan     Cascade = "orphan"
)

// DeleteOptions configures a delete operation. Zero values add no flags.
type DeleteOptions struct {
	// GracePeriod, when set, is passed as --grace-period in seconds.
	GracePeriod *int64
	Cascade     Cascade
}

// Validate checks the grace period and cascade mode.
func (o DeleteOptions) Validate() error {
	if o.GracePeriod != nil && *o.GracePeriod < 0 {
		return fmt.Errorf("%w: grace period %d is negative", ErrInvalidDeleteOptions, *o.GracePeriod)
	}
	switch o.Cascade {
	case "", CascadeBackground, CascadeForeground, CascadeOrphan:
		return nil
	}
	return fmt.Errorf("%w: unknown cascade mode %q", ErrInvalidDeleteOptions, string(o.Cascade))
}
