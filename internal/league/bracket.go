package league

// Slot is the side of a match a bracket winner is written into.
type Slot string

const (
	SlotA Slot = "a"
	SlotB Slot = "b"
)

var bracket = map[Stage]struct {
	next Stage
	slot Slot
}{
	StageQF1: {StageSF1, SlotA},
	StageQF2: {StageSF1, SlotB},
	StageQF3: {StageSF2, SlotA},
	StageQF4: {StageSF2, SlotB},
	StageSF1: {StageF1, SlotA},
	StageSF2: {StageF1, SlotB},
}

// NextSlot returns where the winner of stage plays next. The final has no next slot.
func NextSlot(stage Stage) (Stage, Slot, bool) {
	n, ok := bracket[stage]
	return n.next, n.slot, ok
}

// ValidStage reports whether s is a knockout stage.
func ValidStage(s Stage) bool {
	_, ok := bracket[s]
	return ok || s == StageF1
}
