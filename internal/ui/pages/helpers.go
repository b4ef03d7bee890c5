// Package pages holds the templ components for every screen. Run
// `go tool templ generate` after editing a .templ file.
package pages

import (
	"strconv"
	"time"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/wizard"
)

var brazilTime = time.FixedZone("BRT", -3*60*60)

const buttonClass = "rounded-full bg-white px-8 py-3 font-bold text-black shadow-xl transition-all hover:scale-105 disabled:cursor-not-allowed disabled:opacity-40 disabled:hover:scale-100"

const choiceClass = "flex-1 cursor-pointer rounded-xl border border-white/10 bg-white/5 p-6 text-left transition-all duration-300 hover:scale-[1.02] hover:border-white/30 hover:bg-white/10 has-[:checked]:border-white has-[:checked]:bg-white/90 has-[:checked]:text-black"

const (
	stepBase     = "relative z-10 mx-auto flex min-h-[80vh] w-full max-w-3xl flex-col items-center justify-center px-4"
	progressBase = "h-1.5 w-full appearance-none rounded-full bg-white/10 [&::-moz-progress-bar]:rounded-full [&::-moz-progress-bar]:bg-white [&::-webkit-progress-bar]:rounded-full [&::-webkit-progress-bar]:bg-white/10 [&::-webkit-progress-value]:rounded-full [&::-webkit-progress-value]:bg-white"
	bubbleBase   = "prose prose-sm prose-invert rounded-lg bg-white/10 p-3"
)

func button(extra ...string) string {
	return twmerge.Merge(append([]string{buttonClass}, extra...)...)
}

func logoClass(extra string) string {
	return twmerge.Merge("w-48 drop-shadow-lg md:w-64", extra)
}

func stepClass(direction int) string {
	if direction < 0 {
		return stepBase + " animate-slide-back"
	}
	return stepBase + " animate-slide-forward"
}

// progressClass turns a finished upload bar green.
func progressClass(done bool) string {
	if done {
		return twmerge.Merge(progressBase, "[&::-moz-progress-bar]:bg-green-400 [&::-webkit-progress-value]:bg-green-400")
	}
	return progressBase
}

func bubbleClass(failed bool) string {
	if failed {
		return twmerge.Merge(bubbleBase, "bg-red-500/30")
	}
	return bubbleBase
}

func detailClass(wide bool) string {
	if wide {
		return "md:col-span-2"
	}
	return ""
}

func formatDate(t time.Time) string {
	return t.In(brazilTime).Format("02/01/2006 15:04")
}

func briefingPath(b *model.Briefing) string {
	return "/dashboard/briefings/" + strconv.FormatInt(b.ID, 10)
}

func nextLabel(v wizard.View) string {
	switch {
	case !v.IsLast():
		return "Próximo"
	case v.Submitting:
		return "Enviando..."
	default:
		return "Enviar Briefing"
	}
}

func logoChoice(b *model.Briefing, exclusive, keep string) string {
	if b.HasExclusiveLogo() {
		return exclusive
	}
	return keep
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

type Exchange struct {
	Question string
	Answer   string // rendered markdown
	Failed   bool
}
