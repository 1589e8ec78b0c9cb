package importer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/db/dbtest"
	"github.com/oggyb/muzz-matchmaker/internal/importer"
	"github.com/oggyb/muzz-matchmaker/internal/logger"
	"github.com/oggyb/muzz-matchmaker/internal/repository"
)

const sample = `age,city,bio,gender,preference
25, London ,hi there,male,female
15,leeds,too young,female,male
30,,no city,female,both
41,Bristol,,Female,Both
22,york,bad gender,other,male
`

func TestImport(t *testing.T) {
	gdb := dbtest.Open(t)
	dbtest.Insert(t, gdb, dbtest.Profile(7, 30, db.GenderMale, "london", db.PreferFemale))

	im := importer.New(repository.NewProfileRepository(gdb), logger.Discard())
	res, err := im.Import(context.Background(), strings.NewReader(sample))
	require.NoError(t, err)

	assert.EqualValues(t, 2, res.Imported)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, importer.FirstImportedID, res.FirstID)

	var rows []db.Profile
	require.NoError(t, gdb.Where("user_id >= ?", importer.FirstImportedID).Order("user_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "london", rows[0].City)
	assert.Equal(t, db.PreferFemale, rows[0].Preference)
	assert.Equal(t, "bristol", rows[1].City)
	assert.Equal(t, db.PreferBoth, rows[1].Preference)
	assert.Equal(t, importer.FirstImportedID+1, rows[1].UserID)
}

func TestImportContinuesAfterExistingIDs(t *testing.T) {
	gdb := dbtest.Open(t)
	dbtest.Insert(t, gdb, dbtest.Profile(importer.FirstImportedID+41, 30, db.GenderMale, "london", db.PreferFemale))

	im := importer.New(repository.NewProfileRepository(gdb), logger.Discard())
	res, err := im.Import(context.Background(), strings.NewReader("age,city,bio,gender,preference\n33,leeds,,female,male\n"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Imported)
	assert.Equal(t, importer.FirstImportedID+42, res.FirstID)
}

func TestImportRejectsBadHeader(t *testing.T) {
	gdb := dbtest.Open(t)
	im := importer.New(repository.NewProfileRepository(gdb), logger.Discard())
	_, err := im.Import(context.Background(), strings.NewReader("city,age,bio,gender,preference\n"))
	assert.Error(t, err)
}
