// Package attendance models the per-player attendance and mood state that
// drives roster building, including the cyclic enums the UI steps through.
package attendance

// State is a player's attendance answer for the night.
type State string

const (
	NotComing  State = "not_coming"
	NoResponse State = "no_response"
	Coming     State = "coming"
)

// States is the fixed cyclic order for attendance. Order matters for cycling.
func States() []State {
	return []State{NotComing, NoResponse, Coming}
}

// Mood is a player's emoji mood for the night.
type Mood string

const (
	MoodNormal      Mood = "normal"
	MoodTired       Mood = "tired"
	MoodSick        Mood = "sick"
	MoodFeelingGood Mood = "feeling_good"
	MoodWaffle      Mood = "waffle"
	MoodCocukBende  Mood = "cocuk_bende"
	MoodEvdeDegil   Mood = "evde_degil"
	MoodSonrakine   Mood = "sonrakine"
	MoodKafaIzni    Mood = "kafa_izni"
	MoodHanimpoints Mood = "hanimpoints"
	MoodKeyif       Mood = "sikimin_keyfi"
	MoodDokuzda     Mood = "dokuzda_haber"
)

// Moods is the fixed cyclic order for the mood emoji. Order matters for cycling.
func Moods() []Mood {
	return []Mood{
		MoodNormal, MoodTired, MoodSick, MoodFeelingGood, MoodWaffle,
		MoodCocukBende, MoodEvdeDegil, MoodSonrakine, MoodKafaIzni,
		MoodHanimpoints, MoodKeyif, MoodDokuzda,
	}
}

// Glyph returns the display emoji for a mood.
func (m Mood) Glyph() string {
	if g, ok := moodGlyphs[m]; ok {
		return g
	}
	return moodGlyphs[MoodNormal]
}

// Explanation returns the human explanation for a mood.
func (m Mood) Explanation() string {
	if e, ok := moodExplanations[m]; ok {
		return e
	}
	return moodExplanations[MoodNormal]
}

var moodGlyphs = map[Mood]string{
	MoodNormal:      "😊",
	MoodTired:       "😴",
	MoodSick:        "🤒",
	MoodFeelingGood: "🔥",
	MoodWaffle:      "🧇",
	MoodCocukBende:  "👶",
	MoodEvdeDegil:   "🛄",
	MoodSonrakine:   "🔜",
	MoodKafaIzni:    "💆‍♂️",
	MoodHanimpoints: "🙅‍♀️",
	MoodKeyif:       "🍆",
	MoodDokuzda:     "9️⃣",
}

var moodExplanations = map[Mood]string{
	MoodNormal:      "Normal",
	MoodTired:       "Yorgun",
	MoodSick:        "Hasta",
	MoodFeelingGood: "İyi hissediyorum",
	MoodWaffle:      "Waffle",
	MoodCocukBende:  "Çocuk bende / hasta",
	MoodEvdeDegil:   "Evde değil",
	MoodSonrakine:   "Bi sonraki maça geliyorum",
	MoodKafaIzni:    "Kafa izni",
	MoodHanimpoints: "Not enough hanımpoints",
	MoodKeyif:       "Sikimin keyfine, size mi soracağım götelekler",
	MoodDokuzda:     "9'da kalirsaniz haber edin",
}

// Direction selects which neighbor Cycle moves to.
type Direction string

const (
	Prev Direction = "prev"
	Next Direction = "next"
)

// Cycle steps current through order with wraparound. A current value not in
// order is treated as index 0 before the step, so prev lands on the last
// element and next on the second.
func Cycle[T comparable](current T, dir Direction, order []T) T {
	if len(order) == 0 {
		return current
	}
	idx := 0
	for i, v := range order {
		if v == current {
			idx = i
			break
		}
	}
	n := len(order)
	switch dir {
	case Prev:
		idx = (idx - 1 + n) % n
	default:
		idx = (idx + 1) % n
	}
	return order[idx]
}

// Entry is the canonical per-player attendance record.
type Entry struct {
	PlayerID string `json:"id"`
	Name     string `json:"name"`
	Status   State  `json:"status"`
}

// MoodEntry is the canonical per-player mood record.
type MoodEntry struct {
	PlayerID string `json:"id"`
	Name     string `json:"name"`
	Status   Mood   `json:"status"`
}
