// Package selection holds the two characters being compared.
//
// Choosing a character for one slot while it already occupies the other is
// rejected: the slots are left unchanged, the Notifier receives a notice
// naming the occupied slot and ErrAlreadySelected is returned.
//
//	sel := selection.New(selection.LogNotifier{Logger: logger})
//	sel.OnChange(func(first, second *rickmorty.Character) {
//		_ = tracker.Update(ctx, first, second)
//	})
//	_ = sel.SelectFirst(rick)
package selection
