// Package review walks the unresolved records of a finished run and lets
// an operator retry the lookup, enter a year by hand, or skip.
//
// Decide turns operator input into a Decision without touching any state;
// Session applies decisions to the result set and persists every change
// immediately.
//
// Example:
//
//	session, err := review.NewSession(store, lookup)
//	for {
//	    rec, ok := session.Current()
//	    if !ok {
//	        break
//	    }
//	    decision, err := review.Decide(readLine())
//	    if err != nil {
//	        continue
//	    }
//	    result, err := session.Apply(ctx, decision)
//	    if err != nil || result.Quit {
//	        break
//	    }
//	}
package review
