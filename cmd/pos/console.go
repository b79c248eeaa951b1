package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/laundry-pos/internal/apiclient"
	"github.com/wichananm65/laundry-pos/internal/cart"
	"github.com/wichananm65/laundry-pos/internal/catalog"
	"github.com/wichananm65/laundry-pos/internal/checkout"
	"github.com/wichananm65/laundry-pos/internal/connectivity"
	"github.com/wichananm65/laundry-pos/internal/order"
	"github.com/wichananm65/laundry-pos/internal/pricing"
	"go.uber.org/zap"
)

const currency = "KSh"

const helpText = `commands:
  list                 reload and show services
  add <id>             add one of a service to the cart
  qty <id> <n>         set the quantity of a cart line
  rm <id>              remove a cart line
  discount <amount>    set the order discount
  name [text]          set or clear the customer name
  phone [text]         set or clear the customer phone
  cart                 show the cart and totals
  pay                  submit the order
  last                 show the last submitted order
  orders               show recent orders
  dashboard            today's activity
  status               API connectivity
  focus                check the API now
  quit
`

// console is the operator loop. Output from the monitor goroutine and
// the command loop is serialized through print.
type console struct {
	client    *apiclient.Client
	cart      *cart.Store
	submitter *checkout.Submitter
	monitor   *connectivity.Monitor
	logger    *zap.Logger
	now       func() time.Time

	services []catalog.Item
	customer checkout.Customer

	outMu sync.Mutex
	out   io.Writer
}

func newConsole(client *apiclient.Client, c *cart.Store, s *checkout.Submitter, m *connectivity.Monitor, out io.Writer, logger *zap.Logger) *console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &console{client: client, cart: c, submitter: s, monitor: m, out: out, logger: logger, now: time.Now}
}

func (c *console) print(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func money(d decimal.Decimal) string {
	return currency + " " + d.StringFixed(2)
}

// onPreview is subscribed to the cart. The discount shown is the one
// applied, which can be less than the one typed.
func (c *console) onPreview(p pricing.Preview) {
	c.print("discount %s  total %s\n", money(p.Discount), money(p.Total))
}

// onState is the monitor's OnChange.
func (c *console) onState(from, to connectivity.State) {
	c.print("[api %s]\n", to)
}

// run reads commands until quit or EOF.
func (c *console) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	c.print("> ")
	for sc.Scan() {
		if quit := c.exec(ctx, sc.Text()); quit {
			return nil
		}
		c.print("> ")
	}
	return sc.Err()
}

// exec runs one command line and reports whether the console should exit.
func (c *console) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		c.print(helpText)
	case "list", "services":
		c.loadServices(ctx)
		c.showServices()
	case "add":
		c.add(args)
	case "qty":
		c.setQuantity(args)
	case "rm", "remove":
		c.remove(args)
	case "discount":
		c.setDiscount(args)
	case "name":
		c.customer.Name = optional(args)
	case "phone":
		c.customer.Phone = optional(args)
	case "cart":
		c.showCart()
	case "pay", "submit":
		c.pay(ctx)
	case "last":
		c.showLast()
	case "orders":
		c.showOrders(ctx)
	case "dashboard":
		c.showDashboard(ctx)
	case "status":
		c.print("api %s at %s\n", c.monitor.State(), c.client.BaseURL())
	case "focus":
		c.monitor.Focus()
	case "quit", "exit":
		return true
	default:
		c.print("unknown command %q, try help\n", cmd)
	}
	return false
}

// loadServices refreshes the catalog. A failed load leaves an empty list.
func (c *console) loadServices(ctx context.Context) {
	items, err := c.client.ListServices(ctx)
	if err != nil {
		c.logger.Warn("could not load services", zap.Error(err))
		items = nil
	}
	c.services = items
}

func (c *console) showServices() {
	if len(c.services) == 0 {
		c.print("no services\n")
		return
	}
	for _, it := range c.services {
		state := ""
		if !it.IsActive {
			state = " (inactive)"
		}
		c.print("%4d  %-24s %12s / %s%s\n", it.ID, it.Name, money(it.BasePrice), it.Unit, state)
	}
}

func (c *console) findService(id int) (catalog.Item, bool) {
	for _, it := range c.services {
		if it.ID == id {
			return it, true
		}
	}
	return catalog.Item{}, false
}

func (c *console) add(args []string) {
	id, ok := c.intArg(args, 0, "add <id>")
	if !ok {
		return
	}
	it, found := c.findService(id)
	if !found {
		c.print("unknown service %d\n", id)
		return
	}
	if !it.IsActive {
		c.print("%s is inactive\n", it.Name)
		return
	}
	c.cart.Add(it.Ref())
}

func (c *console) setQuantity(args []string) {
	id, ok := c.intArg(args, 0, "qty <id> <n>")
	if !ok {
		return
	}
	n, ok := c.intArg(args, 1, "qty <id> <n>")
	if !ok {
		return
	}
	c.cart.SetQuantity(id, n)
}

func (c *console) remove(args []string) {
	if id, ok := c.intArg(args, 0, "rm <id>"); ok {
		c.cart.Remove(id)
	}
}

func (c *console) setDiscount(args []string) {
	if len(args) != 1 {
		c.print("usage: discount <amount>\n")
		return
	}
	d, err := decimal.NewFromString(args[0])
	if err != nil {
		c.print("invalid amount %q\n", args[0])
		return
	}
	c.cart.SetDiscount(d)
}

func (c *console) showCart() {
	lines := c.cart.Lines()
	if len(lines) == 0 {
		c.print("cart is empty\n")
		return
	}
	for _, l := range lines {
		c.print("%4d  %-24s %3d x %12s = %12s\n", l.ItemID, l.Name, l.Quantity, money(l.UnitPrice), money(l.LineTotal()))
	}
	p := c.cart.Preview()
	c.print("subtotal %s\ndiscount %s\ntaxable  %s\nvat 16%%  %s\ntotal    %s\n",
		money(p.Subtotal), money(p.Discount), money(p.Taxable), money(p.VAT), money(p.Total))
	if c.customer.Name != nil || c.customer.Phone != nil {
		c.print("customer %s %s\n", deref(c.customer.Name), deref(c.customer.Phone))
	}
}

func (c *console) pay(ctx context.Context) {
	ord, err := c.submitter.Submit(ctx, c.customer)
	var serr *checkout.SubmissionError
	switch {
	case err == nil:
		c.customer = checkout.Customer{}
		c.print("order #%d %s, total %s\n", ord.ID, ord.Status, money(ord.Total))
	case errors.Is(err, checkout.ErrEmptyCart):
		c.print("cart is empty\n")
	case errors.Is(err, checkout.ErrSubmissionBusy):
		c.print("an order is already being submitted\n")
	case errors.As(err, &serr):
		c.print("order failed: %s\n", serr.Message)
	default:
		c.print("order failed: %v\n", err)
	}
}

func (c *console) showLast() {
	ord, ok := c.submitter.Last()
	if !ok {
		c.print("no order submitted yet\n")
		return
	}
	c.printOrder(ord)
	for _, it := range ord.Items {
		c.print("      %-24s %3d x %12s = %12s\n", it.Name, it.Quantity, money(it.UnitPrice), money(it.LineTotal))
	}
	c.print("      subtotal %s, discount %s, vat %s\n", money(ord.Subtotal), money(ord.Discount), money(ord.VAT))
}

func (c *console) printOrder(o order.Order) {
	c.print("#%-4d %s  %-16s %12s  %s\n", o.ID, o.CreatedAt.Local().Format("2006-01-02 15:04"), deref(o.CustomerName), money(o.Total), o.Status)
}

func (c *console) showOrders(ctx context.Context) {
	orders, err := c.client.ListOrders(ctx)
	if err != nil {
		c.print("could not load orders: %v\n", err)
		return
	}
	if len(orders) == 0 {
		c.print("no orders\n")
		return
	}
	for _, o := range orders {
		c.printOrder(o)
	}
}

func (c *console) showDashboard(ctx context.Context) {
	c.loadServices(ctx)
	orders, err := c.client.ListOrders(ctx)
	if err != nil {
		c.logger.Warn("could not load orders", zap.Error(err))
	}
	sum := order.Summarize(orders, c.now())
	c.print("income today %s\nservices     %d\norders today %d\n", money(sum.Revenue), len(c.services), sum.Orders)
}

func (c *console) intArg(args []string, i int, usage string) (int, bool) {
	if i >= len(args) {
		c.print("usage: %s\n", usage)
		return 0, false
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		c.print("usage: %s\n", usage)
		return 0, false
	}
	return n, true
}

// optional joins args; no args clears the field.
func optional(args []string) *string {
	if len(args) == 0 {
		return nil
	}
	s := strings.Join(args, " ")
	return &s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
