// Package platform is the gorm implementation of the target content
// platform's identity and content services.
//
// Operations run on the root connection unless the context carries a
// transaction opened by Store.Transaction, in which case every call made
// with that context joins it:
//
//	err := store.Transaction(ctx, func(ctx context.Context) error {
//		thread, err := store.CreateThread(ctx, t)
//		if err != nil {
//			return err
//		}
//		return store.SetViewCount(ctx, thread.ID, 12)
//	})
package platform
