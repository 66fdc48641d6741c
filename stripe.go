package stripe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	stripelib "github.com/stripe/stripe-go/v72"
)

const (
	// DefaultEndpoint is the base URL every request is made against, unless
	// the Client was created with a different one.
	DefaultEndpoint = stripelib.APIURL + "/v1"

	// DefaultTimeout is the timeout given to a newly created Client.
	DefaultTimeout = 30 * time.Second

	userAgent = "andrewpillar-stripe/v1"
)

// Client is a simple HTTP client for the Stripe API. Each request made via
// this client is authenticated with the secret key it was created with, sent
// as the username of the basic auth credentials. The timeout of the client
// can be changed by setting the Timeout field of the embedded http.Client.
type Client struct {
	http.Client

	// Log receives a debug entry for every request that is made. By default
	// this discards everything written to it.
	Log logrus.FieldLogger

	// Metrics, if set, records the number and duration of requests made.
	Metrics *Metrics

	secret   string
	endpoint string
}

// Encoder is implemented by the request types that know how to write
// themselves as an x-www-form-urlencoded payload. Each field is written as a
// key=value& pair, so the payload written will always have a trailing
// separator.
type Encoder interface {
	Encode(b *bytes.Buffer) error
}

// Error is an error returned from the Stripe API. This is decoded from the
// body of a failed response, along with the status code of that response.
type Error struct {
	StatusCode int       `json:"-"`
	Err        ErrorInfo `json:"error"`
}

// ErrorInfo is the error object in the body of a failed response.
type ErrorInfo struct {
	Type    stripelib.ErrorType `json:"type"`
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Param   string              `json:"param,omitempty"`
}

// ResponseError is returned when a request fails with a response that could
// not be decoded into an Error, or when the response status is above 500.
type ResponseError struct {
	StatusCode int
	Status     string
	Body       string
}

// ArgumentError is returned when a request could not be made because of an
// invalid argument given to it. The underlying error will either be
// ErrInvalidArgument or ErrOutOfRange.
type ArgumentError struct {
	Field  string
	Reason string
	Err    error
}

// Resource represents a resource that has been retrieved from Stripe.
type Resource interface {
	// Endpoint will return the URI for the current Resource from the Stripe
	// API. The given uris will be appended to the final endpoint. If the
	// Resource does not have an ID set on it, then the base endpoint for the
	// Resource should be returned.
	Endpoint(uris ...string) string

	// Load will use the given Stripe client to load in the resource from the
	// Stripe API using the Resource's endpoint. This should overwrite the
	// fields in the Resource with the decoded response from Stripe.
	Load(*Stripe) error
}

// Stripe provides the typed methods for working with each resource in the
// Stripe API.
type Stripe struct {
	*Client
}

type pair struct {
	key   string
	value interface{}
}

// Params is used for defining arbitrary parameters to send to the Stripe API.
// This will be encoded into a valid x-www-form-urlencoded payload.
type Params map[string]interface{}

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("argument out of range")
	ErrEventExists     = errors.New("event exists")
	ErrUnknownResource = errors.New("unknown resource")
)

// encodeSliceToPairs will encode an arbitrary slice of values into a slice of
// pairs. It is expected for the given reflect.Value to be a of reflect.Slice.
// Each pair encoded will have a key of key[i].
func encodeSliceToPairs(key string, val reflect.Value) []pair {
	pairs := make([]pair, 0, val.Len())

	for i := 0; i < val.Len(); i++ {
		k := key + "[" + strconv.FormatInt(int64(i), 10) + "]"
		v := val.Index(i).Interface()

		if p, ok := v.(Params); ok {
			pairs = append(pairs, p.encodeToPairs(k)...)
			continue
		}
		pairs = append(pairs, pair{
			key:   k,
			value: v,
		})
	}
	return pairs
}

func respCode2xx(code int) bool { return code >= 200 && code < 300 }

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

// New returns a Stripe client that talks to the Stripe API with the given
// secret key.
func New(secret string) *Stripe {
	return &Stripe{
		Client: NewClient(DefaultEndpoint, secret),
	}
}

// NewClient configures a new Client for the Stripe API at the given endpoint,
// using the given secret for authentication.
func NewClient(endpoint, secret string) *Client {
	return &Client{
		Client: http.Client{
			Timeout: DefaultTimeout,
		},
		Log:      discardLogger(),
		secret:   secret,
		endpoint: strings.TrimSuffix(endpoint, "/"),
	}
}

func invalidArgument(field, reason string) error {
	return &ArgumentError{
		Field:  field,
		Reason: reason,
		Err:    ErrInvalidArgument,
	}
}

func outOfRange(field, reason string) error {
	return &ArgumentError{
		Field:  field,
		Reason: reason,
		Err:    ErrOutOfRange,
	}
}

func required(field, val string) error {
	if val == "" {
		return invalidArgument(field, "cannot be empty")
	}
	return nil
}

func (e *Error) Error() string {
	return fmt.Sprintf("stripe: %s (%d): %s", e.Err.Type, e.StatusCode, e.Err.Message)
}

func (e *ResponseError) Error() string {
	return "stripe: unexpected response " + e.Status
}

func (e *ArgumentError) Error() string {
	return "stripe: " + e.Err.Error() + ": " + e.Field + " " + e.Reason
}

func (e *ArgumentError) Unwrap() error { return e.Err }

func (p pair) encode() string { return p.key + "=" + url.QueryEscape(fmt.Sprintf("%v", p.value)) }

func (p Params) encodeToPairs(parent string) []pair {
	pairs := make([]pair, 0, len(p))

	for k, v := range p {
		if v == nil {
			continue
		}

		if parent != "" {
			k = parent + "[" + k + "]"
		}

		if p1, ok := v.(Params); ok {
			pairs = append(pairs, p1.encodeToPairs(k)...)
			continue
		}

		if reflect.TypeOf(v).Kind() == reflect.Slice {
			pairs = append(pairs, encodeSliceToPairs(k, reflect.ValueOf(v))...)
			continue
		}
		pairs = append(pairs, pair{
			key:   k,
			value: v,
		})
	}
	return pairs
}

func (p Params) encoded() []string {
	pairs := make([]string, 0, len(p))

	for _, pair := range p.encodeToPairs("") {
		pairs = append(pairs, pair.encode())
	}

	sort.Strings(pairs)
	return pairs
}

// Encode implements the Encoder interface. The pairs are written sorted by
// their key.
func (p Params) Encode(b *bytes.Buffer) error {
	for _, s := range p.encoded() {
		b.WriteString(s)
		b.WriteByte('&')
	}
	return nil
}

// String returns the x-www-form-urlencoded string of the current Params.
func (p Params) String() string { return strings.Join(p.encoded(), "&") }

func writePair(b *bytes.Buffer, key, val string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(val))
	b.WriteByte('&')
}

func writeOptional(b *bytes.Buffer, key, val string) {
	if val != "" {
		writePair(b, key, val)
	}
}

func writeInt(b *bytes.Buffer, key string, i int64) {
	writePair(b, key, strconv.FormatInt(i, 10))
}

// encode encodes the given Encoder and trims the trailing separator from
// what was written.
func encode(enc Encoder) (string, error) {
	var buf bytes.Buffer

	if err := enc.Encode(&buf); err != nil {
		return "", err
	}

	if buf.Len() > 0 {
		buf.Truncate(buf.Len() - 1)
	}
	return buf.String(), nil
}

// endpoint builds the URI for a resource under base. The given id is escaped
// before being added as a path segment.
func endpoint(base, id string, uris ...string) string {
	if id != "" {
		base += "/" + url.PathEscape(id)
	}
	if len(uris) > 0 {
		base += "/" + strings.Join(uris, "/")
	}
	return base
}

// pageParams returns the query Params for a page of a list endpoint. If the
// given customer is not empty then the list is filtered to that customer.
func pageParams(offset, count int, customer string) (Params, error) {
	if offset < 0 {
		return nil, outOfRange("offset", "must be greater than or equal to 0")
	}
	if count < 1 || count > 100 {
		return nil, outOfRange("count", "must be between 1 and 100")
	}

	params := Params{
		"offset": offset,
		"count":  count,
	}

	if customer != "" {
		params["customer"] = customer
	}
	return params, nil
}

func (c *Client) do(method, uri, body string) (string, error) {
	var r io.Reader

	if body != "" {
		r = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, c.endpoint+uri, r)

	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", userAgent)
	req.SetBasicAuth(c.secret, "")

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()

	resp, err := c.Do(req)

	if err != nil {
		c.record(method, uri, 0, start)
		return "", err
	}

	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)

	c.record(method, uri, resp.StatusCode, start)

	if err != nil {
		return "", err
	}

	if !respCode2xx(resp.StatusCode) {
		return "", decodeError(resp, b)
	}
	return string(b), nil
}

func (c *Client) record(method, uri string, status int, start time.Time) {
	dur := time.Since(start)

	if c.Log != nil {
		c.Log.WithFields(logrus.Fields{
			"method":   method,
			"uri":      uri,
			"status":   status,
			"duration": dur,
		}).Debug("stripe request")
	}
	c.Metrics.observe(method, status, dur)
}

// decodeError decodes the body of a failed response into an Error. If the
// status is above 500, or the body is not a Stripe error, then a
// ResponseError is returned instead.
func decodeError(resp *http.Response, body []byte) error {
	rerr := &ResponseError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}

	if resp.StatusCode > 500 {
		return rerr
	}

	e := &Error{
		StatusCode: resp.StatusCode,
	}

	if err := json.Unmarshal(body, e); err != nil {
		return rerr
	}

	if e.Err.Type == "" && e.Err.Message == "" {
		return rerr
	}
	return e
}

// Get will send a GET request to the given URI of the Stripe API, and return
// the body of the response.
func (c *Client) Get(uri string) (string, error) {
	return c.do(http.MethodGet, uri, "")
}

// Post will send a POST request to the given URI of the Stripe API, with the
// given x-www-form-urlencoded body.
func (c *Client) Post(uri, body string) (string, error) {
	return c.do(http.MethodPost, uri, body)
}

// Delete will send a DELETE request to the given URI of the Stripe API.
func (c *Client) Delete(uri string) (string, error) {
	return c.do(http.MethodDelete, uri, "")
}

func (s *Stripe) get(uri string, v interface{}) error {
	body, err := s.Get(uri)

	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), v)
}

// post encodes the given Encoder, if any, and sends it to the given URI. The
// response is decoded into v.
func (s *Stripe) post(uri string, enc Encoder, v interface{}) error {
	var (
		body string
		err  error
	)

	if enc != nil {
		body, err = encode(enc)

		if err != nil {
			return err
		}
	}

	resp, err := s.Post(uri, body)

	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(resp), v)
}

func (s *Stripe) delete(uri string, v interface{}) error {
	body, err := s.Delete(uri)

	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), v)
}
