package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
)

func (r *PGRepo) CreateUser(ctx context.Context, email, name string, passHash []byte) (domain.User, error) {
	q := r.qb().Insert(r.table("users")).
		Columns("email", "name", "pass_hash").
		Values(email, name, passHash).
		Suffix("RETURNING id, email, name, pass_hash, created_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateUser", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PassHash, &u.CreatedAt); err != nil {
		r.logger.Printf("CreateUser scan error after %s: %v", time.Since(start), err)
		return domain.User{}, err
	}
	r.logger.Printf("CreateUser ok in %s id=%s email=%s", time.Since(start), u.ID, u.Email)
	return u, nil
}

func (r *PGRepo) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	q := r.qb().Select("id", "email", "name", "pass_hash", "created_at").
		From(r.table("users")).
		Where(sq.Eq{"email": email})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByEmail", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PassHash, &u.CreatedAt); err != nil {
		r.logger.Printf("UserByEmail scan error after %s: %v", time.Since(start), err)
		return domain.User{}, err
	}
	r.logger.Printf("UserByEmail ok in %s id=%s", time.Since(start), u.ID)
	return u, nil
}

func (r *PGRepo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	q := r.qb().Select("id", "email", "name", "pass_hash", "created_at").
		From(r.table("users")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByID", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PassHash, &u.CreatedAt); err != nil {
		r.logger.Printf("UserByID scan error after %s: %v", time.Since(start), err)
		return domain.User{}, err
	}
	r.logger.Printf("UserByID ok in %s id=%s", time.Since(start), u.ID)
	return u, nil
}

// ---------- FAVORITES ----------

func (r *PGRepo) AddFavorite(ctx context.Context, user domain.UserID, listing domain.ListingID) error {
	q := r.qb().Insert(r.table("favorites")).
		Columns("user_id", "listing_id").
		Values(user, listing).
		Suffix("ON CONFLICT (user_id, listing_id) DO NOTHING")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("AddFavorite", sqlStr, args)

	start := time.Now()
	if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
		r.logger.Printf("AddFavorite exec error after %s: %v", time.Since(start), err)
		return err
	}
	r.logger.Printf("AddFavorite ok in %s user=%s listing=%s", time.Since(start), user, listing)
	return nil
}

func (r *PGRepo) RemoveFavorite(ctx context.Context, user domain.UserID, listing domain.ListingID) error {
	q := r.qb().Delete(r.table("favorites")).
		Where(sq.And{sq.Eq{"user_id": user}, sq.Eq{"listing_id": listing}})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("RemoveFavorite", sqlStr, args)

	start := time.Now()
	if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
		r.logger.Printf("RemoveFavorite exec error after %s: %v", time.Since(start), err)
		return err
	}
	r.logger.Printf("RemoveFavorite ok in %s user=%s listing=%s", time.Since(start), user, listing)
	return nil
}

func (r *PGRepo) FavoritesByUser(ctx context.Context, user domain.UserID) ([]domain.Listing, error) {
	cols := make([]string, len(listingCols))
	for i, c := range listingCols {
		cols[i] = "l." + c
	}
	q := r.qb().Select(cols...).
		From(r.table("favorites") + " f").
		Join(r.table("listings") + " l ON l.listing_id = f.listing_id").
		Where(sq.Eq{"f.user_id": user}).
		OrderBy("f.created_at DESC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("FavoritesByUser", sqlStr, args)
	return r.queryListings(ctx, "FavoritesByUser", sqlStr, args)
}

// ---------- RECOMMENDATIONS ----------

func (r *PGRepo) AddRecommendation(ctx context.Context, to domain.UserID, listing domain.ListingID, from domain.UserID) error {
	q := r.qb().Insert(r.table("recommendations")).
		Columns("to_user_id", "listing_id", "from_user_id").
		Values(to, listing, from)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("AddRecommendation", sqlStr, args)

	start := time.Now()
	if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
		r.logger.Printf("AddRecommendation exec error after %s: %v", time.Since(start), err)
		return err
	}
	r.logger.Printf("AddRecommendation ok in %s to=%s listing=%s from=%s", time.Since(start), to, listing, from)
	return nil
}

func (r *PGRepo) RecommendationsByUser(ctx context.Context, to domain.UserID) ([]domain.Recommendation, error) {
	cols := make([]string, 0, len(listingCols)+4)
	for _, c := range listingCols {
		cols = append(cols, "l."+c)
	}
	cols = append(cols, "u.id", "u.email", "u.name", "rec.created_at")

	q := r.qb().Select(cols...).
		From(r.table("recommendations") + " rec").
		Join(r.table("listings") + " l ON l.listing_id = rec.listing_id").
		Join(r.table("users") + " u ON u.id = rec.from_user_id").
		Where(sq.Eq{"rec.to_user_id": to}).
		OrderBy("rec.created_at DESC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("RecommendationsByUser", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("RecommendationsByUser query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.Recommendation
	for rows.Next() {
		var rec domain.Recommendation
		l := &rec.Listing
		if err := rows.Scan(
			&l.ID, &l.OwnerID, &l.Title, &l.Description,
			&l.PropertyType, &l.State, &l.City, &l.Bedrooms, &l.Bathrooms,
			&l.Furnishing, &l.ListerType, &l.Category, &l.Verified,
			&l.Price, &l.AreaSqFt, &l.Rating, &l.AvailableFrom,
			&l.Amenities, &l.Tags, &l.CreatedAt, &l.UpdatedAt,
			&rec.FromID, &rec.FromEmail, &rec.FromName, &rec.CreatedAt,
		); err != nil {
			r.logger.Printf("RecommendationsByUser scan error: %v", err)
			return nil, err
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("RecommendationsByUser rows error: %v", err)
		return nil, err
	}
	r.logger.Printf("RecommendationsByUser ok in %s count=%d", time.Since(start), len(res))
	return res, nil
}
