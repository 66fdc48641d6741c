// package stripe provides a typed client for the v1 Stripe API. This covers
// customers, cards and tokens, charges and refunds, plans, subscriptions,
// invoice items, invoices, and coupons. Each request type knows how to encode
// itself into the x-www-form-urlencoded payload Stripe expects, and each
// response is decoded into the entity it represents.
//
// stripe.Stripe is the main way to interact with the Stripe API. It embeds a
// stripe.Client, which is a thin HTTP client that authenticates every request
// with the secret key it was given,
//
//     s := stripe.New(os.Getenv("STRIPE_SECRET"))
//
//     ch, err := s.ChargeCard(2000, "usd", &stripe.CreditCardInfo{
//         Number:   "4242424242424242",
//         ExpMonth: 12,
//         ExpYear:  2030,
//         CVC:      "123",
//     }, "Widget")
//
//     if err != nil {
//         panic(err) // Handle error properly.
//     }
//
// the above code will create a charge of 20.00 USD against the given card. A
// token received from Stripe.js can be given as the card number instead, in
// which case only the token is sent.
//
// Arguments are checked before any request is made. An invalid argument will
// return an error that wraps either stripe.ErrInvalidArgument or
// stripe.ErrOutOfRange,
//
//     _, err := s.GetCharges(0, 500, "")
//
//     if errors.Is(err, stripe.ErrOutOfRange) {
//         // At most 100 charges can be retrieved at a time.
//     }
//
// A failed request returns a *stripe.Error decoded from the body of the
// response. This contains the type of error, and the message from Stripe. A
// response that cannot be decoded, or that has a status above 500, returns a
// *stripe.ResponseError instead.
//
// Some requests are simply queries against the Stripe API, for example,
//
//     ok, err := s.PlanExists("gold")
//
// will return false if the plan does not exist, and an error if anything else
// went wrong.
//
// stripe.Params allows for specifying arbitrary request parameters. This is
// encoded to x-www-form-urlencoded, with nested Params being encoded with
// brackets, for example,
//
//     stripe.Params{
//         "card": stripe.Params{
//             "number": "4242424242424242",
//         },
//     }
//
// would be encoded to,
//
//     card[number]=4242424242424242
//
// stripe.HookHandler handles the webhook events that are sent from Stripe. A
// handler can be registered against each event. If a stripe.Store is given to
// the HookHandler, then each event is only handled once, and the charges,
// customers, invoices, and subscriptions sent in the events are kept in the
// Store,
//
//     store, err := stripe.OpenPSQL(os.Getenv("DATABASE_URL"))
//
//     if err != nil {
//         panic(err)
//     }
//
//     hook := stripe.NewHookHandler(os.Getenv("STRIPE_HOOK_SECRET"), store, func(err error) {
//         log.Println(err)
//     })
//
//     hook.Handle("invoice.payment_failed", func(ev stripelib.Event, w http.ResponseWriter, r *http.Request) {
//         // Let the customer know.
//     })
//
//     http.HandleFunc("/stripe-hook", hook.HandlerFunc)
//
// stripe.LoadPlans loads in the plans configured in Stripe from a list of
// plan IDs, typically kept in a file on disk,
//
//     f, _ := os.Open("plans")
//
//     plans, err := stripe.LoadPlans(s, f, func(err error) {
//         log.Println(err)
//     })
//
// Requests can be logged by setting the Log field on the stripe.Client to a
// logrus.FieldLogger, and counted by setting the Metrics field to the
// stripe.Metrics returned from stripe.NewMetrics.
package stripe
