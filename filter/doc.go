// Package filter narrows character listings with expr-lang expressions.
//
// # Usage
//
//	f, err := filter.NewExprCompiler().Compile(`Species == "Human" and EpisodeCount > 10`)
//	if err != nil {
//		return err
//	}
//	humans := filter.Apply(f, page.Characters)
//
// Named presets are held by a Manager:
//
//	m := filter.NewManager()
//	_ = m.RegisterPresets(map[string]string{"regulars": "EpisodeCount >= 20"})
//	regulars, err := m.ApplyPreset(ctx, "regulars", chars)
//
// # Environment
//
// Fields: ID, Name, Status, Species, Type, Gender, Origin, Location,
// EpisodeCount, Created and the full Character record.
//
// Helpers: contains, startsWith, endsWith (all case-insensitive), lower,
// upper, daysSince, now, inEpisode(id), isAlive(), isDead().
//
// # Shorthand
//
// Expressions written as field:value terms are rewritten before compiling:
//
//	name:"rick" AND status!:dead
//	species:alien OR episode:28
//	episodes:>=10
//
// # Error Handling
//
// Compile failures, including unknown identifiers, are returned as
// *CompilationError. A filter that fails at runtime for a character, or does
// not yield a bool, treats it as not matching.
package filter
