// Package folio is the composition root of the folio note organizer.
//
// It wires the domain (pkg/core: containers, items, selection and the
// autosaving editor) to a storage adapter (pkg/adapters: fs, sqlite, memory)
// and to the item variants of pkg/kinds.
//
// Usage:
//
//	svc, err := folio.New(ctx, "./.folio",
//		folio.WithLogger(logger),
//		folio.WithRender(func(v core.View) { ... }),
//	)
//	if err != nil {
//		return err
//	}
//	defer svc.Close(ctx)
//
//	memo, err := svc.OnCreateItem(ctx, 0)
//	svc.EditContent("buy milk")
//	svc.Save(ctx)
//
// Every mutation is persisted as a full snapshot of the collection before it
// becomes visible. Only one process may own a data directory at a time.
package folio
