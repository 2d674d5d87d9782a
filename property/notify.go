package property

// NotifyBefore invokes d's notify callback prior to a write taking
// effect. When d carries FlagNotifyOverride, a false return vetoes the
// write; otherwise the return value is advisory only (spec §4.2).
func NotifyBefore(d *Descriptor, obj interface{}, newValue string) bool {
	if d.Notify == nil || d.Flags&FlagNotify == 0 {
		return true
	}
	ok := d.Notify(obj, newValue)
	if d.Flags&FlagNotifyOverride != 0 {
		return ok
	}
	return true
}

// NotifyAfter invokes d's notify callback once a write has taken
// effect; its return value is always advisory (there is nothing left
// to veto).
func NotifyAfter(d *Descriptor, obj interface{}, newValue string) {
	if d.Notify == nil || d.Flags&FlagNotify == 0 {
		return
	}
	d.Notify(obj, newValue)
}
