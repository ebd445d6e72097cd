package cache

// ErrSharingConflict is returned when a region is requested with a
// sharing mode that differs from its registration.  This is a
// configuration error in the build graph, not a runtime race.
type ErrSharingConflict struct {
	name string
	have SharingMode
	want SharingMode
}

// NewErrSharingConflict returns a new error naming the region and
// both modes.
func NewErrSharingConflict(name string, have, want SharingMode) ErrSharingConflict {
	return ErrSharingConflict{name, have, want}
}

func (e ErrSharingConflict) Error() string {
	return "region " + e.name + " is " + e.have.String() + ", requested " + e.want.String()
}

// ErrRegionBusy is returned when an Exclusive region is already held
// by another builder.
type ErrRegionBusy struct {
	name string
}

// NewErrRegionBusy returns a new error specialized to the busy
// region.
func NewErrRegionBusy(name string) ErrRegionBusy {
	return ErrRegionBusy{name}
}

func (e ErrRegionBusy) Error() string {
	return "region " + e.name + " is held by another builder"
}
