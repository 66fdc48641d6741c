package stripe

import (
	"database/sql"
	"time"

	"github.com/andrewpillar/query"

	_ "github.com/lib/pq"

	stripelib "github.com/stripe/stripe-go/v72"
)

// PSQL provides a way of storing Stripe resources within PostgreSQL. This will
// store the Customer, Charge, Invoice, and Subscription resources. Using this
// implementation of the Store interface would require having the following
// schema,
//
//     CREATE TABLE stripe_customers (
//         id          VARCHAR NOT NULL UNIQUE,
//         email       VARCHAR NULL,
//         description VARCHAR NULL,
//         created_at  TIMESTAMP NOT NULL
//     );
//
//     CREATE TABLE stripe_events (
//         id VARCHAR NOT NULL UNIQUE
//     );
//
//     CREATE TABLE stripe_charges (
//         id              VARCHAR NOT NULL UNIQUE,
//         customer_id     VARCHAR NULL,
//         amount          INTEGER NOT NULL,
//         amount_refunded INTEGER NOT NULL DEFAULT 0,
//         currency        VARCHAR NOT NULL,
//         paid            BOOLEAN NOT NULL,
//         refunded        BOOLEAN NOT NULL,
//         created_at      TIMESTAMP NOT NULL
//     );
//
//     CREATE TABLE stripe_invoices (
//         id          VARCHAR NOT NULL UNIQUE,
//         customer_id VARCHAR NOT NULL,
//         total       INTEGER NOT NULL,
//         amount_due  INTEGER NOT NULL,
//         paid        BOOLEAN NOT NULL,
//         closed      BOOLEAN NOT NULL,
//         created_at  TIMESTAMP NOT NULL,
//         updated_at  TIMESTAMP NOT NULL
//     );
//
//     CREATE TABLE stripe_subscriptions (
//         customer_id VARCHAR NOT NULL UNIQUE,
//         plan_id     VARCHAR NOT NULL,
//         status      VARCHAR NOT NULL,
//         started_at  TIMESTAMP NOT NULL,
//         ends_at     TIMESTAMP NULL
//     );
//
// A customer only ever has the one subscription in the v1 API, so the
// subscriptions are keyed on the customer ID.
type PSQL struct {
	*sql.DB
}

var (
	_ Store = (*PSQL)(nil)

	customerTable     = "stripe_customers"
	chargeTable       = "stripe_charges"
	eventTable        = "stripe_events"
	invoiceTable      = "stripe_invoices"
	subscriptionTable = "stripe_subscriptions"
)

// OpenPSQL opens a connection to the PostgreSQL database with the given data
// source name, and pings it to make sure it is reachable.
func OpenPSQL(dsn string) (PSQL, error) {
	db, err := sql.Open("postgres", dsn)

	if err != nil {
		return PSQL{}, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return PSQL{}, err
	}
	return PSQL{DB: db}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}

// subscriptionEnd returns when the given Subscription ends, if it has been
// ended or has been set to cancel at the end of its period.
func subscriptionEnd(s *Subscription) sql.NullTime {
	if s.EndedAt > 0 {
		return sql.NullTime{Time: time.Unix(s.EndedAt, 0), Valid: true}
	}
	if s.CancelAtPeriodEnd && s.CurrentPeriodEnd > 0 {
		return sql.NullTime{Time: time.Unix(s.CurrentPeriodEnd, 0), Valid: true}
	}
	return sql.NullTime{}
}

// exists checks if a row in the given table has the given value for col.
func (p PSQL) exists(table, col, val string) (bool, error) {
	q := query.Select(
		query.Columns(col),
		query.From(table),
		query.Where(col, "=", query.Arg(val)),
	)

	var s string

	if err := p.QueryRow(q.Build(), q.Args()...).Scan(&s); err != nil {
		if err != sql.ErrNoRows {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// LookupCustomer will lookup the Customer by the given ID in the
// stripe_customers table and return them along with whether or not the
// Customer could be found.
func (p PSQL) LookupCustomer(id string) (*Customer, bool, error) {
	q := query.Select(
		query.Columns("*"),
		query.From(customerTable),
		query.Where("id", "=", query.Arg(id)),
	)

	c := &Customer{
		Object: "customer",
	}

	var (
		email       sql.NullString
		description sql.NullString
		created     time.Time
	)

	if err := p.QueryRow(q.Build(), q.Args()...).Scan(&c.ID, &email, &description, &created); err != nil {
		if err != sql.ErrNoRows {
			return nil, false, err
		}
		return nil, false, nil
	}

	c.Email = email.String
	c.Description = description.String
	c.Created = created.Unix()
	return c, true, nil
}

// LogEvent stores the given event ID in the stripe_events table. If the ID
// has already been stored then ErrEventExists is returned.
func (p PSQL) LogEvent(id string) error {
	q := query.Select(
		query.Count("id"),
		query.From(eventTable),
		query.Where("id", "=", query.Arg(id)),
	)

	var count int64

	if err := p.QueryRow(q.Build(), q.Args()...).Scan(&count); err != nil {
		return err
	}

	if count > 0 {
		return ErrEventExists
	}

	q = query.Insert(eventTable, query.Columns("id"), query.Values(id))

	_, err := p.Exec(q.Build(), q.Args()...)
	return err
}

// ForgetEvent deletes the given event ID from the stripe_events table.
func (p PSQL) ForgetEvent(id string) error {
	q := query.Delete(eventTable, query.Where("id", "=", query.Arg(id)))

	_, err := p.Exec(q.Build(), q.Args()...)
	return err
}

// Subscription will get the Subscription for the given Customer from the
// stripe_subscriptions table and return it along with whether or not the
// Subscription could be found. Only the ID of the Plan is set on the returned
// Subscription.
func (p PSQL) Subscription(customer string) (*Subscription, bool, error) {
	q := query.Select(
		query.Columns("*"),
		query.From(subscriptionTable),
		query.Where("customer_id", "=", query.Arg(customer)),
	)

	sub := &Subscription{
		Object: "subscription",
		Plan:   &Plan{},
	}

	var (
		status    string
		startedAt time.Time
		endsAt    sql.NullTime
	)

	row := p.QueryRow(q.Build(), q.Args()...)

	if err := row.Scan(&sub.Customer, &sub.Plan.ID, &status, &startedAt, &endsAt); err != nil {
		if err != sql.ErrNoRows {
			return nil, false, err
		}
		return nil, false, nil
	}

	st, err := ParseSubscriptionStatus(status)

	if err != nil {
		return nil, false, err
	}

	sub.Status = st
	sub.Start = startedAt.Unix()

	if endsAt.Valid {
		sub.CancelAtPeriodEnd = true
		sub.CurrentPeriodEnd = endsAt.Time.Unix()
	}
	return sub, true, nil
}

// Charges returns all of the Charges for the given Customer from the
// stripe_charges table.
func (p PSQL) Charges(customer string) ([]*Charge, error) {
	q := query.Select(
		query.Columns("*"),
		query.From(chargeTable),
		query.Where("customer_id", "=", query.Arg(customer)),
		query.OrderDesc("created_at"),
	)

	rows, err := p.Query(q.Build(), q.Args()...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	cc := make([]*Charge, 0)

	for rows.Next() {
		var (
			cust     sql.NullString
			currency string
			created  time.Time
		)

		c := &Charge{
			Object: "charge",
		}

		err := rows.Scan(
			&c.ID,
			&cust,
			&c.Amount,
			&c.AmountRefunded,
			&currency,
			&c.Paid,
			&c.Refunded,
			&created,
		)

		if err != nil {
			return nil, err
		}

		c.Customer = cust.String
		c.Currency = stripelib.Currency(currency)
		c.Created = created.Unix()
		cc = append(cc, c)
	}
	return cc, rows.Err()
}

// Invoices returns all of the Invoices for the given Customer from the
// stripe_invoices table. The lines of each Invoice are not stored.
func (p PSQL) Invoices(customer string) ([]*Invoice, error) {
	q := query.Select(
		query.Columns("*"),
		query.From(invoiceTable),
		query.Where("customer_id", "=", query.Arg(customer)),
		query.OrderDesc("created_at"),
	)

	rows, err := p.Query(q.Build(), q.Args()...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	invs := make([]*Invoice, 0)

	for rows.Next() {
		var created, updated time.Time

		inv := &Invoice{
			Object: "invoice",
		}

		err := rows.Scan(
			&inv.ID,
			&inv.Customer,
			&inv.Total,
			&inv.AmountDue,
			&inv.Paid,
			&inv.Closed,
			&created,
			&updated,
		)

		if err != nil {
			return nil, err
		}

		inv.Date = created.Unix()
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (p PSQL) putCustomer(c *Customer) error {
	ok, err := p.exists(customerTable, "id", c.ID)

	if err != nil {
		return err
	}

	if ok {
		q := query.Update(
			customerTable,
			query.Set("email", query.Arg(nullString(c.Email))),
			query.Set("description", query.Arg(nullString(c.Description))),
			query.Where("id", "=", query.Arg(c.ID)),
		)

		_, err = p.Exec(q.Build(), q.Args()...)
		return err
	}

	q := query.Insert(
		customerTable,
		query.Columns("id", "email", "description", "created_at"),
		query.Values(c.ID, nullString(c.Email), nullString(c.Description), time.Unix(c.Created, 0)),
	)

	_, err = p.Exec(q.Build(), q.Args()...)
	return err
}

func (p PSQL) putCharge(c *Charge) error {
	ok, err := p.exists(chargeTable, "id", c.ID)

	if err != nil {
		return err
	}

	if ok {
		q := query.Update(
			chargeTable,
			query.Set("amount_refunded", query.Arg(c.AmountRefunded)),
			query.Set("paid", query.Arg(c.Paid)),
			query.Set("refunded", query.Arg(c.Refunded)),
			query.Where("id", "=", query.Arg(c.ID)),
		)

		_, err = p.Exec(q.Build(), q.Args()...)
		return err
	}

	q := query.Insert(
		chargeTable,
		query.Columns("id", "customer_id", "amount", "amount_refunded", "currency", "paid", "refunded", "created_at"),
		query.Values(
			c.ID,
			nullString(c.Customer),
			c.Amount,
			c.AmountRefunded,
			string(c.Currency),
			c.Paid,
			c.Refunded,
			time.Unix(c.Created, 0),
		),
	)

	_, err = p.Exec(q.Build(), q.Args()...)
	return err
}

func (p PSQL) putInvoice(i *Invoice) error {
	// Upcoming invoices have no ID until they are created.
	if i.ID == "" {
		return ErrUnknownResource
	}

	ok, err := p.exists(invoiceTable, "id", i.ID)

	if err != nil {
		return err
	}

	if !ok {
		created := time.Unix(i.Date, 0)

		q := query.Insert(
			invoiceTable,
			query.Columns("id", "customer_id", "total", "amount_due", "paid", "closed", "created_at", "updated_at"),
			query.Values(i.ID, i.Customer, i.Total, i.AmountDue, i.Paid, i.Closed, created, created),
		)

		_, err := p.Exec(q.Build(), q.Args()...)
		return err
	}

	q := query.Update(
		invoiceTable,
		query.Set("total", query.Arg(i.Total)),
		query.Set("amount_due", query.Arg(i.AmountDue)),
		query.Set("paid", query.Arg(i.Paid)),
		query.Set("closed", query.Arg(i.Closed)),
		query.Set("updated_at", query.Arg(time.Now())),
		query.Where("id", "=", query.Arg(i.ID)),
	)

	_, err = p.Exec(q.Build(), q.Args()...)
	return err
}

func (p PSQL) putSubscription(s *Subscription) error {
	var plan string

	if s.Plan != nil {
		plan = s.Plan.ID
	}

	ok, err := p.exists(subscriptionTable, "customer_id", s.Customer)

	if err != nil {
		return err
	}

	if !ok {
		q := query.Insert(
			subscriptionTable,
			query.Columns("customer_id", "plan_id", "status", "started_at", "ends_at"),
			query.Values(s.Customer, plan, s.Status.String(), time.Unix(s.Start, 0), subscriptionEnd(s)),
		)

		_, err := p.Exec(q.Build(), q.Args()...)
		return err
	}

	q := query.Update(
		subscriptionTable,
		query.Set("plan_id", query.Arg(plan)),
		query.Set("status", query.Arg(s.Status.String())),
		query.Set("ends_at", query.Arg(subscriptionEnd(s))),
		query.Where("customer_id", "=", query.Arg(s.Customer)),
	)

	_, err = p.Exec(q.Build(), q.Args()...)
	return err
}

// Put will put the given Resource into the PostgreSQL database. If the given
// Resource already exists then it will be updated in the respective table.
func (p PSQL) Put(r Resource) error {
	switch v := r.(type) {
	case *Customer:
		return p.putCustomer(v)
	case *Charge:
		return p.putCharge(v)
	case *Invoice:
		return p.putInvoice(v)
	case *Subscription:
		return p.putSubscription(v)
	default:
		return ErrUnknownResource
	}
}

// Remove will delete the given Resource from the PostgreSQL database.
// Resources that are not stored are ignored.
func (p PSQL) Remove(r Resource) error {
	var col, id, table string

	switch v := r.(type) {
	case *Customer:
		col, id, table = "id", v.ID, customerTable
	case *Charge:
		col, id, table = "id", v.ID, chargeTable
	case *Invoice:
		col, id, table = "id", v.ID, invoiceTable
	case *Subscription:
		col, id, table = "customer_id", v.Customer, subscriptionTable
	default:
		return nil
	}

	q := query.Delete(table, query.Where(col, "=", query.Arg(id)))

	_, err := p.Exec(q.Build(), q.Args()...)
	return err
}
