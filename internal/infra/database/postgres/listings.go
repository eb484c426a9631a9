package postgres

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
)

// Колонки объявления в порядке сканирования. Внутренний PK наружу не выбираем —
// всё адресуется публичным listing_id.
var listingCols = []string{
	"listing_id", "owner_id", "title", "description",
	"property_type", "state", "city", "bedrooms", "bathrooms",
	"furnishing", "lister_type", "category", "verified",
	"price", "area_sq_ft", "rating", "available_from",
	"amenities", "tags", "created_at", "updated_at",
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Description,
		&l.PropertyType, &l.State, &l.City, &l.Bedrooms, &l.Bathrooms,
		&l.Furnishing, &l.ListerType, &l.Category, &l.Verified,
		&l.Price, &l.AreaSqFt, &l.Rating, &l.AvailableFrom,
		&l.Amenities, &l.Tags, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *PGRepo) CreateListing(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	q := r.qb().Insert(r.table("listings")).
		Columns(
			"listing_id", "owner_id", "title", "description",
			"property_type", "state", "city", "bedrooms", "bathrooms",
			"furnishing", "lister_type", "category", "verified",
			"price", "area_sq_ft", "rating", "available_from",
			"amenities", "tags",
		).
		Values(
			l.ID, l.OwnerID, l.Title, l.Description,
			l.PropertyType, l.State, l.City, l.Bedrooms, l.Bathrooms,
			l.Furnishing, l.ListerType, l.Category, l.Verified,
			l.Price, l.AreaSqFt, l.Rating, l.AvailableFrom,
			l.Amenities, l.Tags,
		).
		Suffix("RETURNING " + strings.Join(listingCols, ", "))

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateListing", sqlStr, args)

	start := time.Now()
	out, err := scanListing(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("CreateListing scan error after %s: %v", time.Since(start), err)
		return domain.Listing{}, err
	}
	r.logger.Printf("CreateListing ok in %s id=%s title=%q", time.Since(start), out.ID, out.Title)
	return out, nil
}

func (r *PGRepo) ListingByID(ctx context.Context, id domain.ListingID) (domain.Listing, error) {
	q := r.qb().Select(listingCols...).
		From(r.table("listings")).
		Where(sq.Eq{"listing_id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("ListingByID", sqlStr, args)

	start := time.Now()
	l, err := scanListing(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("ListingByID scan error after %s: %v", time.Since(start), err)
		return domain.Listing{}, err
	}
	r.logger.Printf("ListingByID ok in %s id=%s", time.Since(start), l.ID)
	return l, nil
}

func (r *PGRepo) AllListings(ctx context.Context) ([]domain.Listing, error) {
	q := r.qb().Select(listingCols...).
		From(r.table("listings")).
		OrderBy("created_at DESC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("AllListings", sqlStr, args)
	return r.queryListings(ctx, "AllListings", sqlStr, args)
}

// BuildListingFilter переводит доменный фильтр в конъюнкцию условий squirrel.
// Отсутствующее (nil) ограничение не попадает в WHERE.
func BuildListingFilter(f domain.ListingFilter) sq.And {
	var and sq.And

	eq := sq.Eq{}
	if f.PropertyType != nil {
		eq["property_type"] = *f.PropertyType
	}
	if f.State != nil {
		eq["state"] = *f.State
	}
	if f.City != nil {
		eq["city"] = *f.City
	}
	if f.Bedrooms != nil {
		eq["bedrooms"] = *f.Bedrooms
	}
	if f.Bathrooms != nil {
		eq["bathrooms"] = *f.Bathrooms
	}
	if f.Furnishing != nil {
		eq["furnishing"] = *f.Furnishing
	}
	if f.ListerType != nil {
		eq["lister_type"] = *f.ListerType
	}
	if f.Category != nil {
		eq["category"] = *f.Category
	}
	if f.Verified != nil {
		eq["verified"] = *f.Verified
	}
	if len(eq) > 0 {
		and = append(and, eq)
	}

	// Диапазоны: каждая граница независима
	if f.MinPrice != nil {
		and = append(and, sq.GtOrEq{"price": *f.MinPrice})
	}
	if f.MaxPrice != nil {
		and = append(and, sq.LtOrEq{"price": *f.MaxPrice})
	}
	if f.MinArea != nil {
		and = append(and, sq.GtOrEq{"area_sq_ft": *f.MinArea})
	}
	if f.MaxArea != nil {
		and = append(and, sq.LtOrEq{"area_sq_ft": *f.MaxArea})
	}
	if f.MinRating != nil {
		and = append(and, sq.GtOrEq{"rating": *f.MinRating})
	}
	if f.MaxRating != nil {
		and = append(and, sq.LtOrEq{"rating": *f.MaxRating})
	}
	if f.AvailableFrom != nil {
		and = append(and, sq.GtOrEq{"available_from": *f.AvailableFrom})
	}
	if f.AvailableTo != nil {
		and = append(and, sq.LtOrEq{"available_from": *f.AvailableTo})
	}

	// Вхождение множества: должны присутствовать ВСЕ перечисленные значения
	if len(f.Amenities) > 0 {
		and = append(and, sq.Expr("amenities @> ?", f.Amenities))
	}
	if len(f.Tags) > 0 {
		and = append(and, sq.Expr("tags @> ?", f.Tags))
	}

	return and
}

// Белый список сортировок → колонка
var sortCols = map[string]string{
	domain.SortByPrice:   "price",
	domain.SortByRating:  "rating",
	domain.SortByArea:    "area_sq_ft",
	domain.SortByCreated: "created_at",
}

func (r *PGRepo) SearchListings(ctx context.Context, spec domain.SearchSpec) ([]domain.Listing, error) {
	sb := r.qb().Select(listingCols...).From(r.table("listings"))
	if cond := BuildListingFilter(spec.Filter); len(cond) > 0 {
		sb = sb.Where(cond)
	}

	col, ok := sortCols[spec.SortBy]
	if !ok {
		col = "price"
	}
	dir := "ASC"
	if spec.SortOrder == domain.SortDesc {
		dir = "DESC"
	}
	// стабильный вторичный порядок, чтобы страницы не плыли
	sb = sb.OrderBy(col+" "+dir, "listing_id ASC")

	if spec.Skip > 0 {
		sb = sb.Offset(uint64(spec.Skip))
	}
	if spec.Limit > 0 {
		sb = sb.Limit(uint64(spec.Limit))
	}

	sqlStr, args, _ := sb.ToSql()
	r.logSQL("SearchListings", sqlStr, args)
	return r.queryListings(ctx, "SearchListings", sqlStr, args)
}

func (r *PGRepo) CountListings(ctx context.Context, f domain.ListingFilter) (int, error) {
	sb := r.qb().Select("COUNT(*)").From(r.table("listings"))
	if cond := BuildListingFilter(f); len(cond) > 0 {
		sb = sb.Where(cond)
	}

	sqlStr, args, _ := sb.ToSql()
	r.logSQL("CountListings", sqlStr, args)

	start := time.Now()
	var n int
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		r.logger.Printf("CountListings scan error after %s: %v", time.Since(start), err)
		return 0, err
	}
	r.logger.Printf("CountListings ok in %s total=%d", time.Since(start), n)
	return n, nil
}

// ListingFilterOptions собирает перечисления уникальных значений по всем
// фильтруемым полям (для выпадашек в UI).
func (r *PGRepo) ListingFilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	var (
		opts domain.FilterOptions
		err  error
	)
	if opts.PropertyTypes, err = r.distinct(ctx, "property_type"); err != nil {
		return domain.FilterOptions{}, err
	}
	if opts.States, err = r.distinct(ctx, "state"); err != nil {
		return domain.FilterOptions{}, err
	}
	if opts.Cities, err = r.distinct(ctx, "city"); err != nil {
		return domain.FilterOptions{}, err
	}
	if opts.Furnishings, err = r.distinct(ctx, "furnishing"); err != nil {
		return domain.FilterOptions{}, err
	}
	if opts.ListerTypes, err = r.distinct(ctx, "lister_type"); err != nil {
		return domain.FilterOptions{}, err
	}
	if opts.Categories, err = r.distinct(ctx, "category"); err != nil {
		return domain.FilterOptions{}, err
	}
	if opts.Amenities, err = r.distinctArray(ctx, "amenities"); err != nil {
		return domain.FilterOptions{}, err
	}
	if opts.Tags, err = r.distinctArray(ctx, "tags"); err != nil {
		return domain.FilterOptions{}, err
	}
	return opts, nil
}

func (r *PGRepo) distinct(ctx context.Context, col string) ([]string, error) {
	q := r.qb().Select("DISTINCT " + col).
		From(r.table("listings")).
		Where(col + " <> ''").
		OrderBy(col + " ASC")

	sqlStr, args, _ := q.ToSql()
	return r.queryStrings(ctx, "distinct."+col, sqlStr, args)
}

// Для text[] колонок — distinct по развёрнутым элементам
func (r *PGRepo) distinctArray(ctx context.Context, col string) ([]string, error) {
	sqlStr := "SELECT DISTINCT unnest(" + col + ") AS v FROM " + r.table("listings") + " ORDER BY v ASC"
	return r.queryStrings(ctx, "distinct."+col, sqlStr, nil)
}

func (r *PGRepo) UpdateListing(ctx context.Context, id domain.ListingID, owner domain.UserID, p domain.ListingPatch) (domain.Listing, error) {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.PropertyType != nil {
		set["property_type"] = *p.PropertyType
	}
	if p.State != nil {
		set["state"] = *p.State
	}
	if p.City != nil {
		set["city"] = *p.City
	}
	if p.Bedrooms != nil {
		set["bedrooms"] = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		set["bathrooms"] = *p.Bathrooms
	}
	if p.Furnishing != nil {
		set["furnishing"] = *p.Furnishing
	}
	if p.ListerType != nil {
		set["lister_type"] = *p.ListerType
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Verified != nil {
		set["verified"] = *p.Verified
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.AreaSqFt != nil {
		set["area_sq_ft"] = *p.AreaSqFt
	}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	if p.AvailableFrom != nil {
		set["available_from"] = *p.AvailableFrom
	}
	if p.Amenities != nil {
		set["amenities"] = p.Amenities
	}
	if p.Tags != nil {
		set["tags"] = p.Tags
	}

	q := r.qb().Update(r.table("listings")).
		SetMap(set).
		Where(sq.And{sq.Eq{"listing_id": id}, sq.Eq{"owner_id": owner}}).
		Suffix("RETURNING " + strings.Join(listingCols, ", "))

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UpdateListing", sqlStr, args)

	start := time.Now()
	out, err := scanListing(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("UpdateListing scan error after %s: %v", time.Since(start), err)
		return domain.Listing{}, err
	}
	r.logger.Printf("UpdateListing ok in %s id=%s", time.Since(start), out.ID)
	return out, nil
}

func (r *PGRepo) DeleteListing(ctx context.Context, id domain.ListingID, owner domain.UserID) error {
	q := r.qb().Delete(r.table("listings")).
		Where(sq.And{sq.Eq{"listing_id": id}, sq.Eq{"owner_id": owner}})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteListing", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteListing exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Printf("DeleteListing no rows affected in %s (listing not found or not owner)", time.Since(start))
		return pgx.ErrNoRows
	}
	r.logger.Printf("DeleteListing ok in %s id=%s", time.Since(start), id)
	return nil
}

// ---- общие хелперы выборок ----

func (r *PGRepo) queryListings(ctx context.Context, op, sqlStr string, args []any) ([]domain.Listing, error) {
	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("%s query error after %s: %v", op, time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			r.logger.Printf("%s scan error: %v", op, err)
			return nil, err
		}
		res = append(res, l)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("%s rows error: %v", op, err)
		return nil, err
	}
	r.logger.Printf("%s ok in %s count=%d", op, time.Since(start), len(res))
	return res, nil
}

func (r *PGRepo) queryStrings(ctx context.Context, op, sqlStr string, args []any) ([]string, error) {
	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("%s query error after %s: %v", op, time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			r.logger.Printf("%s scan error: %v", op, err)
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("%s rows error: %v", op, err)
		return nil, err
	}
	r.logger.Printf("%s ok in %s count=%d", op, time.Since(start), len(out))
	return out, nil
}
