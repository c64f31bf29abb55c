package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gopersonal/storefront/internal/api"
	"github.com/gopersonal/storefront/internal/orders"
	"github.com/gopersonal/storefront/pkg/logger"
	"github.com/gopersonal/storefront/pkg/types"
)

// Catalog is the product browsing surface.
type Catalog interface {
	ListProducts(ctx context.Context) ([]types.Product, error)
	GetProduct(ctx context.Context, id int) (*types.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// Session is the auth surface the screens drive.
type Session interface {
	Login(ctx context.Context, input api.LoginInput) error
	Register(ctx context.Context, input api.RegisterInput) error
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, input api.UpdateProfileInput) error
	UploadProfilePhoto(ctx context.Context, filename string, content io.Reader) (string, error)
	IsAuthenticated() bool
	User() *types.UserData
	Err() string
}

// Cart is the cart surface the screens drive.
type Cart interface {
	AddToCart(ctx context.Context, product types.Product, quantity int) error
	RemoveFromCart(ctx context.Context, productID int) error
	UpdateQuantity(ctx context.Context, productID, quantity int) error
	ClearCart(ctx context.Context) error
	RefreshCart(ctx context.Context) error
	Items() []types.CartItem
	TotalItems() int
	TotalPrice() decimal.Decimal
	Err() string
}

// Checkout places the order.
type Checkout interface {
	PlaceOrder(ctx context.Context) (*api.Order, error)
}

// Orders is the order history surface.
type Orders interface {
	List(ctx context.Context) ([]api.Order, error)
	Get(ctx context.Context, orderID string) (*api.Order, error)
}

// App drives the terminal screens over the managers. One screen is active at
// a time; the navigator decides which.
type App struct {
	catalog  Catalog
	session  Session
	cart     Cart
	checkout Checkout
	orders   Orders
	logg     *logger.Logger

	nav *Navigator
	in  *bufio.Scanner
	out io.Writer
}

// NewApp wires the screens. The starting route depends on whether a session
// was restored at startup.
func NewApp(catalog Catalog, session Session, cart Cart, checkout Checkout, orders Orders, logg *logger.Logger, in io.Reader, out io.Writer) *App {
	root := RouteLogin
	if session.IsAuthenticated() {
		root = RouteProducts
	}
	return &App{
		catalog:  catalog,
		session:  session,
		cart:     cart,
		checkout: checkout,
		orders:   orders,
		logg:     logg,
		nav:      NewNavigator(root),
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run renders screens until the user quits or input ends.
func (a *App) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := a.nav.Current()
		a.renderScreen(a.logg.WithScreen(ctx, string(entry.Route)), entry)

		line, ok := a.readLine("> ")
		if !ok {
			return nil
		}
		if strings.EqualFold(line, "q") || strings.EqualFold(line, "quit") {
			return nil
		}
		a.dispatch(a.logg.WithScreen(ctx, string(entry.Route)), entry, line)
	}
}

func (a *App) renderScreen(ctx context.Context, entry Entry) {
	switch entry.Route {
	case RouteLogin:
		a.renderLogin()
	case RouteRegister:
		a.renderRegister()
	case RouteProducts:
		a.renderProducts(ctx)
	case RouteProductDetail:
		a.renderProductDetail(ctx, entry.Params.ProductID)
	case RouteCart:
		a.renderCart(ctx)
	case RouteProfile:
		a.renderProfile()
	case RouteOrders:
		a.renderOrders(ctx)
	case RouteOrderDetail:
		a.renderOrderDetail(ctx, entry.Params.OrderID)
	}
}

func (a *App) dispatch(ctx context.Context, entry Entry, line string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	cmd = strings.ToLower(cmd)

	// Global navigation first, then per-screen commands.
	switch cmd {
	case "back", "b":
		a.nav.Pop()
		return
	case "products", "p":
		if a.session.IsAuthenticated() || a.nav.Current().Route != RouteLogin {
			a.nav.Push(RouteProducts, Params{})
			return
		}
	case "cart", "c":
		if a.session.IsAuthenticated() {
			a.nav.Push(RouteCart, Params{})
			return
		}
	case "orders", "o":
		if a.session.IsAuthenticated() {
			a.nav.Push(RouteOrders, Params{})
			return
		}
	case "profile":
		if a.session.IsAuthenticated() {
			a.nav.Push(RouteProfile, Params{})
			return
		}
	}

	switch entry.Route {
	case RouteLogin:
		a.handleLogin(ctx, cmd)
	case RouteRegister:
		a.handleRegister(ctx, cmd)
	case RouteProducts:
		a.handleProducts(ctx, cmd, arg)
	case RouteProductDetail:
		a.handleProductDetail(ctx, cmd, arg, entry.Params.ProductID)
	case RouteCart:
		a.handleCart(ctx, cmd, arg)
	case RouteProfile:
		a.handleProfile(ctx, cmd, arg)
	case RouteOrders:
		a.handleOrders(cmd, arg)
	case RouteOrderDetail:
		// Detail is read-only; global commands already handled.
	}
}

func (a *App) renderLogin() {
	a.printf("\n== Sign in ==\n")
	if msg := a.session.Err(); msg != "" {
		a.printf("! %s\n", msg)
	}
	a.printf("commands: login, register, q\n")
}

func (a *App) handleLogin(ctx context.Context, cmd string) {
	switch cmd {
	case "login":
		email, ok := a.readLine("email: ")
		if !ok {
			return
		}
		password, ok := a.readLine("password: ")
		if !ok {
			return
		}
		if err := a.session.Login(ctx, api.LoginInput{Email: email, Password: password}); err != nil {
			return
		}
		if err := a.cart.RefreshCart(ctx); err != nil {
			a.logg.Warn(ctx, "cart refresh after login failed")
		}
		a.nav.Reset(RouteProducts)
	case "register":
		a.nav.Push(RouteRegister, Params{})
	}
}

func (a *App) renderRegister() {
	a.printf("\n== Create account ==\n")
	if msg := a.session.Err(); msg != "" {
		a.printf("! %s\n", msg)
	}
	a.printf("commands: submit, back\n")
}

func (a *App) handleRegister(ctx context.Context, cmd string) {
	if cmd != "submit" {
		return
	}
	username, ok := a.readLine("username: ")
	if !ok {
		return
	}
	email, ok := a.readLine("email: ")
	if !ok {
		return
	}
	name, ok := a.readLine("name: ")
	if !ok {
		return
	}
	password, ok := a.readLine("password: ")
	if !ok {
		return
	}
	input := api.RegisterInput{Username: username, Email: email, Name: name, Password: password}
	if err := a.session.Register(ctx, input); err != nil {
		return
	}
	a.nav.Reset(RouteProducts)
}

func (a *App) renderProducts(ctx context.Context) {
	a.printf("\n== Products ==\n")
	products, err := a.catalog.ListProducts(ctx)
	if err != nil {
		a.printf("! could not load products\n")
		return
	}
	for _, p := range products {
		a.printf("  [%d] %s  $%s\n", p.ID, p.Name, p.Price.StringFixed(2))
	}
	a.printf("cart: %d item(s)\n", a.cart.TotalItems())
	a.printf("commands: view <id>, add <id>, categories, cart, orders, profile, q\n")
}

func (a *App) handleProducts(ctx context.Context, cmd, arg string) {
	switch cmd {
	case "view":
		if id, err := strconv.Atoi(arg); err == nil {
			a.nav.Push(RouteProductDetail, Params{ProductID: id})
		}
	case "add":
		if id, err := strconv.Atoi(arg); err == nil {
			a.addProduct(ctx, id, 1)
		}
	case "categories":
		categories, err := a.catalog.ListCategories(ctx)
		if err != nil {
			a.printf("! could not load categories\n")
			return
		}
		a.printf("categories: %s\n", strings.Join(categories, ", "))
	}
}

func (a *App) renderProductDetail(ctx context.Context, productID int) {
	product, err := a.catalog.GetProduct(ctx, productID)
	if err != nil {
		a.printf("! could not load product %d\n", productID)
		return
	}
	a.printf("\n== %s ==\n", product.Name)
	a.printf("  $%s  (%s)\n", product.Price.StringFixed(2), product.Category)
	if product.Rating != nil {
		a.printf("  rating %.1f (%d reviews)\n", product.Rating.Rate, product.Rating.Count)
	}
	a.printf("  %s\n", product.Description)
	a.printf("commands: add [qty], back\n")
}

func (a *App) handleProductDetail(ctx context.Context, cmd, arg string, productID int) {
	if cmd != "add" {
		return
	}
	qty := 1
	if parsed, err := strconv.Atoi(arg); err == nil {
		qty = parsed
	}
	a.addProduct(ctx, productID, qty)
}

func (a *App) addProduct(ctx context.Context, productID, qty int) {
	product, err := a.catalog.GetProduct(ctx, productID)
	if err != nil {
		a.printf("! could not load product %d\n", productID)
		return
	}
	if err := a.cart.AddToCart(ctx, *product, qty); err != nil {
		a.printf("! %s\n", a.cart.Err())
		return
	}
	a.printf("added %s\n", product.Name)
}

func (a *App) renderCart(ctx context.Context) {
	if err := a.cart.RefreshCart(ctx); err != nil && a.cart.Err() != "" {
		a.printf("! %s\n", a.cart.Err())
	}
	a.printf("\n== Cart ==\n")
	items := a.cart.Items()
	if len(items) == 0 {
		a.printf("  (empty)\n")
	}
	for _, item := range items {
		a.printf("  [%d] %s  x%d  $%s\n",
			item.Product.ID, item.Product.Name, item.Quantity, item.LineTotal().StringFixed(2))
	}
	a.printf("total: $%s (%d items)\n", a.cart.TotalPrice().StringFixed(2), a.cart.TotalItems())
	a.printf("commands: qty <id> <n>, remove <id>, clear, checkout, back\n")
}

func (a *App) handleCart(ctx context.Context, cmd, arg string) {
	switch cmd {
	case "qty":
		idRaw, qtyRaw, _ := strings.Cut(arg, " ")
		id, errID := strconv.Atoi(strings.TrimSpace(idRaw))
		qty, errQty := strconv.Atoi(strings.TrimSpace(qtyRaw))
		if errID != nil || errQty != nil {
			return
		}
		if err := a.cart.UpdateQuantity(ctx, id, qty); err != nil {
			a.printf("! %s\n", a.cart.Err())
		}
	case "remove":
		if id, err := strconv.Atoi(arg); err == nil {
			if err := a.cart.RemoveFromCart(ctx, id); err != nil {
				a.printf("! %s\n", a.cart.Err())
			}
		}
	case "clear":
		if err := a.cart.ClearCart(ctx); err != nil {
			a.printf("! %s\n", a.cart.Err())
		}
	case "checkout":
		order, err := a.checkout.PlaceOrder(ctx)
		if err != nil {
			a.printf("! checkout failed\n")
			return
		}
		a.printf("order %s placed, total $%.2f\n", order.ID, order.TotalAmount)
		a.nav.Replace(RouteOrderDetail, Params{OrderID: order.ID})
	}
}

func (a *App) renderProfile() {
	user := a.session.User()
	if user == nil {
		a.printf("! not signed in\n")
		return
	}
	a.printf("\n== Profile ==\n")
	a.printf("  %s (%s)\n", user.Name, user.Username)
	a.printf("  %s\n", user.Email)
	if user.ProfileImage != "" {
		a.printf("  photo: %s\n", user.ProfileImage)
	}
	a.printf("commands: edit, photo <path>, logout, back\n")
}

func (a *App) handleProfile(ctx context.Context, cmd, arg string) {
	switch cmd {
	case "edit":
		name, ok := a.readLine("name: ")
		if !ok {
			return
		}
		email, ok := a.readLine("email: ")
		if !ok {
			return
		}
		if err := a.session.UpdateProfile(ctx, api.UpdateProfileInput{Name: name, Email: email}); err != nil {
			a.printf("! %s\n", a.session.Err())
		}
	case "photo":
		a.uploadPhoto(ctx, strings.TrimSpace(arg))
	case "logout":
		if err := a.session.Logout(ctx); err != nil {
			a.printf("! %s\n", a.session.Err())
			return
		}
		a.nav.Reset(RouteLogin)
	}
}

func (a *App) uploadPhoto(ctx context.Context, path string) {
	if path == "" {
		a.printf("! photo needs a file path\n")
		return
	}
	file, err := os.Open(path)
	if err != nil {
		a.printf("! could not open %s\n", path)
		return
	}
	defer file.Close()

	imageURL, err := a.session.UploadProfilePhoto(ctx, file.Name(), file)
	if err != nil {
		a.printf("! %s\n", a.session.Err())
		return
	}
	a.printf("photo uploaded: %s\n", imageURL)
}

func (a *App) renderOrders(ctx context.Context) {
	a.printf("\n== Orders ==\n")
	orders, err := a.orders.List(ctx)
	if err != nil {
		a.printf("! could not load orders\n")
		return
	}
	if len(orders) == 0 {
		a.printf("  (no orders yet)\n")
	}
	for _, order := range orders {
		a.printf("  [%s] %s  $%.2f  %s\n",
			order.ID, order.CreatedAt.Format("2006-01-02"), order.TotalAmount, order.Status)
	}
	a.printf("commands: view <id>, back\n")
}

func (a *App) handleOrders(cmd, arg string) {
	if cmd == "view" && strings.TrimSpace(arg) != "" {
		a.nav.Push(RouteOrderDetail, Params{OrderID: strings.TrimSpace(arg)})
	}
}

func (a *App) renderOrderDetail(ctx context.Context, orderID string) {
	order, err := a.orders.Get(ctx, orderID)
	if err != nil {
		a.printf("! could not load order %s\n", orderID)
		return
	}
	a.printf("\n== Order %s ==\n", order.ID)
	display := orders.DisplayFor(order.Status)
	a.printf("  status: %s - %s\n", order.Status, display.Description)
	for _, line := range order.Items {
		a.printf("  %s  x%d  $%.2f\n", line.Name, line.Quantity, line.Price)
	}
	a.printf("  total: $%.2f\n", order.TotalAmount)
	if order.ShippingAddress != nil {
		addr := order.ShippingAddress
		a.printf("  ship to: %s, %s %s, %s\n", addr.Street, addr.City, addr.PostalCode, addr.Country)
	}
	a.printf("commands: back\n")
}

func (a *App) readLine(prompt string) (string, bool) {
	a.printf("%s", prompt)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
